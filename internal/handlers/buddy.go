package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/0xZumii/bleepblorp/internal/repositories"
	"github.com/0xZumii/bleepblorp/internal/telemetry"
	"github.com/0xZumii/bleepblorp/internal/ws"
)

// BuddyHandler manages the friend graph: requests, accepts, declines and
// removals. Every mutation re-broadcasts the buddy snapshot of both
// affected users so their buddy-list windows stay current.
type BuddyHandler struct {
	users   repositories.UserRepository
	friends repositories.FriendRepository
	hub     *ws.Hub
	audit   *telemetry.AuditEmitter
}

func NewBuddyHandler(users repositories.UserRepository, friends repositories.FriendRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *BuddyHandler {
	return &BuddyHandler{users: users, friends: friends, hub: hub, audit: audit}
}

// Snapshot returns the caller's buddy sets: friends plus pending requests
// in both directions.
func (h *BuddyHandler) Snapshot(c *gin.Context) {
	snap, err := h.friends.Snapshot(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load buddies"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// SendRequest creates a pending friend request toward the named user.
func (h *BuddyHandler) SendRequest(c *gin.Context) {
	var req struct {
		ScreenName string `json:"screen_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "screen_name is required"})
		return
	}

	ctx := c.Request.Context()
	me := currentUser(c)

	target, err := h.users.GetUserByScreenName(ctx, req.ScreenName)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve user"})
		return
	}

	if target.ID == me.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot befriend yourself"})
		return
	}

	if friends, err := h.friends.AreFriends(ctx, me.ID, target.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check friendship"})
		return
	} else if friends {
		c.JSON(http.StatusConflict, gin.H{"error": "already friends"})
		return
	}

	if pending, err := h.friends.HasPendingBetween(ctx, me.ID, target.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check pending requests"})
		return
	} else if pending {
		c.JSON(http.StatusConflict, gin.H{"error": "request already pending"})
		return
	}

	if declined, err := h.friends.HasDeclined(ctx, me.ID, target.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check declined requests"})
		return
	} else if declined {
		c.JSON(http.StatusConflict, gin.H{"error": "request was declined"})
		return
	}

	request, err := h.friends.CreateRequest(ctx, me, target)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create request"})
		return
	}

	h.audit.Emit(ctx, "info",
		fmt.Sprintf("friend request %s -> %s", me.ScreenName, target.ScreenName),
		requestIDFromContext(c), auditUserID(c))

	h.broadcastSnapshots(ctx, me.ID, target.ID)
	c.JSON(http.StatusCreated, gin.H{"request": request})
}

// AcceptRequest accepts a pending request from the named user and creates
// the friendship. Accepting an already-accepted request is a no-op.
func (h *BuddyHandler) AcceptRequest(c *gin.Context) {
	var req struct {
		ScreenName string `json:"screen_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "screen_name is required"})
		return
	}

	ctx := c.Request.Context()
	me := currentUser(c)

	sender, err := h.users.GetUserByScreenName(ctx, req.ScreenName)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve user"})
		return
	}

	transitioned, err := h.friends.AcceptRequest(ctx, sender.ID, me.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to accept request"})
		return
	}
	if !transitioned {
		friends, err := h.friends.AreFriends(ctx, me.ID, sender.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check friendship"})
			return
		}
		if friends {
			c.JSON(http.StatusOK, gin.H{"status": "already friends"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "no pending request"})
		return
	}

	friendship, err := h.friends.CreateFriendship(ctx, me, sender)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create friendship"})
		return
	}

	h.audit.Emit(ctx, "info",
		fmt.Sprintf("friendship created %s <-> %s", me.ScreenName, sender.ScreenName),
		requestIDFromContext(c), auditUserID(c))

	h.broadcastSnapshots(ctx, me.ID, sender.ID)
	c.JSON(http.StatusOK, gin.H{"friendship": friendship})
}

// DeclineRequest declines a pending request from the named user. Declined
// is terminal for that direction.
func (h *BuddyHandler) DeclineRequest(c *gin.Context) {
	var req struct {
		ScreenName string `json:"screen_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "screen_name is required"})
		return
	}

	ctx := c.Request.Context()
	me := currentUser(c)

	sender, err := h.users.GetUserByScreenName(ctx, req.ScreenName)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve user"})
		return
	}

	transitioned, err := h.friends.DeclineRequest(ctx, sender.ID, me.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to decline request"})
		return
	}
	if !transitioned {
		c.JSON(http.StatusNotFound, gin.H{"error": "no pending request"})
		return
	}

	h.audit.Emit(ctx, "info",
		fmt.Sprintf("friend request declined %s -> %s", sender.ScreenName, me.ScreenName),
		requestIDFromContext(c), auditUserID(c))

	h.broadcastSnapshots(ctx, me.ID, sender.ID)
	c.JSON(http.StatusOK, gin.H{"status": "declined"})
}

// RemoveFriend deletes the friendship with the named user. Conversation
// history is left intact.
func (h *BuddyHandler) RemoveFriend(c *gin.Context) {
	ctx := c.Request.Context()
	me := currentUser(c)

	friend, err := h.users.GetUserByScreenName(ctx, c.Param("screen_name"))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve user"})
		return
	}

	friends, err := h.friends.AreFriends(ctx, me.ID, friend.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check friendship"})
		return
	}
	if !friends {
		c.JSON(http.StatusNotFound, gin.H{"error": "not friends"})
		return
	}

	if err := h.friends.RemoveFriendship(ctx, me.ID, friend.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove friend"})
		return
	}

	h.audit.Emit(ctx, "info",
		fmt.Sprintf("friendship removed %s <-> %s", me.ScreenName, friend.ScreenName),
		requestIDFromContext(c), auditUserID(c))

	h.broadcastSnapshots(ctx, me.ID, friend.ID)
	c.Status(http.StatusNoContent)
}

// broadcastSnapshots recomputes and pushes the buddy snapshot for each
// affected user. Push failures only cost liveness; the next snapshot or
// reconnect repairs the view.
func (h *BuddyHandler) broadcastSnapshots(ctx context.Context, userIDs ...string) {
	for _, id := range userIDs {
		snap, err := h.friends.Snapshot(ctx, id)
		if err != nil {
			log.Printf("buddy snapshot recompute failed user=%s: %v", id, err)
			continue
		}
		h.hub.BroadcastBuddySnapshot(id, snap)
	}
}
