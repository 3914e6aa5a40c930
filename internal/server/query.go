package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/me/jobq/internal/jobexpr"
	"github.com/me/jobq/pkg/model"
)

// listQuery is the parsed query string shared by list endpoints.
type listQuery struct {
	opts   model.ListOptions
	filter *jobexpr.Filter
}

// parseListQuery reads limit, offset and where. Any problem is returned as a
// VALIDATION_ERROR ready to send.
func (s *Server) parseListQuery(r *http.Request) (listQuery, *model.APIError) {
	q := r.URL.Query()
	lq := listQuery{opts: model.DefaultListOptions()}

	var details []model.FieldError
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"limit", &lq.opts.Limit},
		{"offset", &lq.opts.Offset},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			details = append(details, model.FieldError{Field: p.name, Message: fmt.Sprintf("%s must be an integer", p.name)})
			continue
		}
		*p.dst = n
	}

	filter, err := jobexpr.Compile(q.Get("where"), s.config.FilterTimeout)
	if err != nil {
		details = append(details, model.FieldError{Field: "where", Message: err.Error()})
	}
	if len(details) > 0 {
		return listQuery{}, model.NewValidationError("invalid query parameters", details...)
	}

	lq.opts.Clamp()
	lq.filter = filter
	return lq, nil
}

// page filters jobs and cuts out the requested page.
func (lq listQuery) page(jobs []model.Job) ([]model.JobView, *model.Pagination, *model.APIError) {
	matched, err := lq.filter.Apply(jobs)
	if err != nil {
		return nil, nil, model.NewValidationError("where expression failed",
			model.FieldError{Field: "where", Message: err.Error()})
	}
	page, pg := model.Paginate(matched, lq.opts)
	return model.NewJobViews(page), pg, nil
}
