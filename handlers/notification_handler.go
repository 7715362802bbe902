package handlers

import (
	"context"
	"net/http"

	"mindfuelAPI/internal/notification"
)

type DeviceRegistrar interface {
	RegisterDevice(ctx context.Context, clerkID string, req *notification.RegisterDeviceRequest) error
}

type NotificationHandler struct {
	devices DeviceRegistrar
}

func NewNotificationHandler(d DeviceRegistrar) *NotificationHandler {
	return &NotificationHandler{devices: d}
}

// RegisterDevice stores the caller's FCM token. Registering the same token
// again refreshes it.
func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, clerkID, ok := authenticated(w, r)
	if !ok {
		return
	}
	defer cancel()

	var req notification.RegisterDeviceRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	if err := h.devices.RegisterDevice(ctx, clerkID, &req); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Device registered"})
}
