// Package models holds the request and response bodies of the HTTP API.
package models

import (
	"math"
	"time"

	"github.com/smazurov/thermview/internal/devices"
)

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"1.0.0" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc1234" doc:"Git commit hash"`
	BuildDate string `json:"build_date" example:"2026-01-27T10:30:00Z" doc:"Build timestamp"`
	BuildID   string `json:"build_id" example:"42" doc:"Build identifier"`
	Modified  bool   `json:"modified" doc:"Built from a tree with uncommitted changes"`
	GoVersion string `json:"go_version" example:"go1.24.11" doc:"Go toolchain version"`
	Compiler  string `json:"compiler" example:"gc" doc:"Go compiler"`
	Platform  string `json:"platform" example:"linux/arm64" doc:"Target platform"`
}

type VersionResponse struct {
	Body VersionData
}

// Point is one grid cell. Celsius is null when the cell holds no reading.
type Point struct {
	X       int      `json:"x" example:"120" doc:"Column in the thermal grid"`
	Y       int      `json:"y" example:"88" doc:"Row in the thermal grid"`
	Celsius *float64 `json:"celsius" example:"36.6" doc:"Temperature in Celsius"`
}

// Peak models
type PeakData struct {
	Sequence uint64    `json:"sequence" example:"1024" doc:"Frame sequence number"`
	Hottest  Point     `json:"hottest" doc:"Hottest cell, marked by the crosshair"`
	Coldest  Point     `json:"coldest" doc:"Coldest cell"`
	Mean     *float64  `json:"mean" example:"22.4" doc:"Mean of valid cells"`
	Valid    int       `json:"valid" example:"49152" doc:"Number of cells with a reading"`
	Captured time.Time `json:"captured" doc:"Frame capture time"`
}

type PeakResponse struct {
	Body PeakData
}

// Status models
type StatusData struct {
	Device    string     `json:"device" example:"/dev/video0" doc:"Capture device"`
	State     string     `json:"state" example:"connected" enum:"disconnected,connected,stopped" doc:"Session state"`
	Reason    string     `json:"reason,omitempty" example:"stop requested" doc:"Why the session stopped"`
	Frames    uint64     `json:"frames" example:"1200" doc:"Frames processed"`
	Skipped   uint64     `json:"skipped" example:"2" doc:"Frames skipped"`
	FPS       float64    `json:"fps" example:"25" doc:"Smoothed frame rate"`
	LastFrame *time.Time `json:"last_frame,omitempty" doc:"Time of the last processed frame"`
	LastError string     `json:"last_error,omitempty" doc:"Last skipped frame error"`
	Clients   int        `json:"clients" example:"1" doc:"Connected stream clients"`
}

type StatusResponse struct {
	Body StatusData
}

// Stop models
type StopData struct {
	Status string `json:"status" example:"stopping" doc:"Stop request status"`
}

type StopResponse struct {
	Body StopData
}

// Device models
type DevicesData struct {
	Devices []devices.DeviceInfo `json:"devices" doc:"Capture devices"`
	Count   int                  `json:"count" example:"1" doc:"Number of devices"`
}

type DevicesResponse struct {
	Body DevicesData
}

// Finite returns nil for NaN and infinities, which JSON cannot carry.
func Finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
