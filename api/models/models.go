// Package models tracks all api models for request and responses
package models

import "github.com/aouyang1/beforeafter/content"

// SlideStateResponse describes a mounted carousel.
type SlideStateResponse struct {
	Session                   string `json:"session"`
	Index                     int    `json:"index"`
	Count                     int    `json:"count"`
	AutoRotateIntervalSeconds int    `json:"auto_rotate_interval_seconds"`
	AutoRotates               bool   `json:"auto_rotates"`
}

type ValidateResponse struct {
	Visible   bool               `json:"visible"`
	Items     int                `json:"items"`
	Fallbacks []content.Fallback `json:"fallbacks"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
