package service

import (
	"regexp"
	"strings"

	"github.com/noah-isme/worktime-api/internal/models"
)

var (
	mobileUA = regexp.MustCompile(`android|iphone|ipod|blackberry|iemobile|opera mini`)
	tabletUA = regexp.MustCompile(`ipad|tablet|playbook|silk`)
)

const (
	mobileMaxViewport = 768
	tabletMaxViewport = 1024
)

// DeviceHints is what the client knows about its display and input.
// Zero values mean unknown.
type DeviceHints struct {
	ViewportWidth int
	HasTouch      bool
	UserAgent     string
}

// ClassifyDevice derives the coarse device category used to tag records.
func ClassifyDevice(h DeviceHints) models.Device {
	ua := strings.ToLower(h.UserAgent)
	width := h.ViewportWidth

	if mobileUA.MatchString(ua) || (width > 0 && width <= mobileMaxViewport && h.HasTouch) {
		return models.DeviceMobile
	}
	if tabletUA.MatchString(ua) || (width > mobileMaxViewport && width <= tabletMaxViewport) {
		return models.DeviceTablet
	}
	return models.DeviceDesktop
}
