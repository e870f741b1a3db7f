package dto

// EnsureUserRequest fields are optional; an absent field keeps the stored value
type EnsureUserRequest struct {
	Email       *string `json:"email"`
	DisplayName *string `json:"displayName"`
}

type EnsureUserResponse struct {
	OK     bool   `json:"ok"`
	Source string `json:"source"`
	UID    string `json:"uid"`
}

type RegisterDeviceRequest struct {
	Token      string `json:"token" binding:"required"`
	DeviceInfo string `json:"deviceInfo"`
}
