package service

import (
	"github.com/google/uuid"

	"github.com/xxxsen/docshare/internal/pkg/token"
)

func newID() string {
	return uuid.NewString()
}

func newToken() (string, error) {
	return token.Generate()
}
