package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/olist-etl/api/responses"
	"github.com/angelmondragon/olist-etl/internal/analytics"
	"github.com/angelmondragon/olist-etl/internal/analytics/types"
	pkgerrors "github.com/angelmondragon/olist-etl/pkg/errors"
	"github.com/angelmondragon/olist-etl/pkg/logger"
	"github.com/angelmondragon/olist-etl/pkg/pagination"
)

type resultPayload struct {
	Name    string      `json:"name"`
	Columns []string    `json:"columns"`
	Count   int         `json:"count"`
	Rows    types.Table `json:"rows"`
}

func ListResults(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		names, err := service.Names(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		out := make([]string, 0, len(names))
		for _, name := range names {
			out = append(out, name.String())
		}
		responses.WriteSuccess(w, out)
	}
}

func GetResult(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		table, err := service.Result(ctx, chi.URLParam(r, "name"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		page, err := pagination.Window(table.Name().String(), table.Len(), params)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
			return
		}
		responses.WritePage(w, resultPayload{
			Name:    table.Name().String(),
			Columns: table.Columns(),
			Count:   table.Len(),
			Rows:    table.Slice(page.Start, page.End),
		}, responses.Meta{Limit: page.Limit, NextCursor: page.NextCursor})
	}
}

func pageParams(r *http.Request) (pagination.Params, error) {
	query := r.URL.Query()
	params := pagination.Params{Cursor: query.Get("cursor")}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return params, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a non-negative integer").
				WithDetails(map[string]any{"limit": raw})
		}
		params.Limit = limit
	}
	return params, nil
}
