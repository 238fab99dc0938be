package handlers

import (
	"net/http"

	"github.com/LepeyevaEmiliya/projects/services"
	"github.com/LepeyevaEmiliya/projects/utils"
)

type NotificationHandler struct {
	responder
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService, development bool) *NotificationHandler {
	return &NotificationHandler{responder: responder{development: development}, notifications: notifications}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.notifications.List(r.Context(), currentUser(r).ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, list)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Notification")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	n, err := h.notifications.MarkRead(r.Context(), id, currentUser(r).ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	updated, err := h.notifications.MarkAllRead(r.Context(), currentUser(r).ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.Envelope{
		Success: true,
		Data:    map[string]int64{"updated": updated},
		Message: "All notifications marked as read",
	})
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Notification")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.notifications.Delete(r.Context(), id, currentUser(r).ID); err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteMessage(w, http.StatusOK, "Notification deleted")
}
