package validation

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apperr"
)

type commentInput struct {
	VideoID string `json:"videoId" validate:"entityid"`
	Content string `json:"content" validate:"notblank,max=20"`
}

func TestStructPasses(t *testing.T) {
	if err := Struct(commentInput{VideoID: uuid.NewString(), Content: "hello"}); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
}

func TestStructBlankContent(t *testing.T) {
	err := Struct(commentInput{VideoID: uuid.NewString(), Content: "   "})
	if !apperr.Is(err, apperr.KindValidationFailed) {
		t.Fatalf("expected ValidationFailed, got %v", err)
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	if msg := appErr.Fields["content"]; msg != "content is required" {
		t.Fatalf("expected field detail keyed by json name, got %#v", appErr.Fields)
	}
}

func TestStructTooLong(t *testing.T) {
	err := Struct(commentInput{VideoID: uuid.NewString(), Content: "this comment is definitely too long"})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Fields["content"] != "content must be at most 20 characters" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestStructMalformedIdentifier(t *testing.T) {
	err := Struct(commentInput{VideoID: "42", Content: "ok"})
	if !apperr.Is(err, apperr.KindInvalidIdentifier) {
		t.Fatalf("expected InvalidIdentifier, got %v", err)
	}
}
