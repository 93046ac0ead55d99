package controllers

import (
	"net/http"

	"github.com/tradelinkhq/tradelink-backend/api/validators"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func pageParams(r *http.Request) (int, int, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 100000)
	if err != nil {
		return 0, 0, err
	}
	size, err := validators.ParseQueryInt(r, "size", defaultPageSize, 1, maxPageSize)
	if err != nil {
		return 0, 0, err
	}
	return page, size, nil
}
