// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/viewpoint/internal/models"
	"github.com/tomtom215/viewpoint/internal/validation"
)

// maxRequestBody caps request bodies well above any legitimate payload.
const maxRequestBody = 1 << 20 // 1 MiB

// createTagRequest is the body of POST /api/v1/tags.
type createTagRequest struct {
	Name      string `json:"name" validate:"required,max=64"`
	SessionID string `json:"sessionId" validate:"required,session_id"`
}

// voteTagRequest is the body of PUT /api/v1/tags.
type voteTagRequest struct {
	TagID     string `json:"tagId" validate:"required,uuid4"`
	SessionID string `json:"sessionId" validate:"required,session_id"`
	Lat       string `json:"lat" validate:"required"`
	Lng       string `json:"lng" validate:"required"`
	Dir       string `json:"dir" validate:"required"`
	Action    string `json:"action" validate:"required,oneof=add remove"`
}

func (r *voteTagRequest) viewpoint() models.Viewpoint {
	return models.Viewpoint{Lat: r.Lat, Lng: r.Lng, Direction: r.Dir}
}

// createFeedbackRequest is the body of POST /api/v1/feedback.
type createFeedbackRequest struct {
	ViewpointID string   `json:"viewpointId" validate:"required,viewpoint_id"`
	SessionID   string   `json:"sessionId" validate:"required,session_id"`
	Text        string   `json:"text" validate:"max=4096"`
	Tags        []string `json:"tags" validate:"dive,max=64"`
}

// decodeAndValidate parses the request body into dst and validates it.
// On failure it writes the error response and returns false; the
// handler should just return.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	rw := NewResponseWriter(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		rw.BadRequest("request body is not valid JSON")
		return false
	}

	if err := validation.ValidateStruct(dst); err != nil {
		var ve *validation.RequestValidationError
		if errors.As(err, &ve) {
			rw.ValidationError("request validation failed", ve.Fields())
		} else {
			rw.BadRequest(err.Error())
		}
		return false
	}
	return true
}
