package http

import (
	"errors"
	"fmt"
	"net/http"

	"budget/internal/core"
	"budget/internal/ledger"
	"budget/internal/store"
)

// command is the typed form of one (method, action) pair. parseCommand
// turns a request into exactly one variant; execute runs it.
type command interface {
	execute(w http.ResponseWriter, r *http.Request, s *Server)
}

// dispatchError carries the HTTP status for a request that never
// reaches the repository.
type dispatchError struct {
	status  int
	message string
}

func (e *dispatchError) Error() string {
	return e.message
}

func invalidRequest(method string) *dispatchError {
	return &dispatchError{
		status:  http.StatusMethodNotAllowed,
		message: fmt.Sprintf("Invalid request type: %s", method),
	}
}

func invalidAction(action string) *dispatchError {
	return &dispatchError{
		status:  http.StatusMethodNotAllowed,
		message: fmt.Sprintf("Invalid action type: %s", action),
	}
}

func invalidInput(err error) *dispatchError {
	return &dispatchError{
		status:  http.StatusMethodNotAllowed,
		message: err.Error(),
	}
}

// parseCommand maps the request onto a command:
//
//	POST add | edit | delete
//	GET  list | edit | list_categories
func parseCommand(r *http.Request) (command, error) {
	action := param(r, "action")

	switch r.Method {
	case http.MethodPost:
		switch action {
		case "add":
			in, err := entryInput(r)
			if err != nil {
				return nil, invalidInput(err)
			}
			return &addCommand{input: in}, nil
		case "edit":
			id, err := intParam(r, "id")
			if err != nil {
				return nil, invalidInput(err)
			}
			in, err := entryInput(r)
			if err != nil {
				return nil, invalidInput(err)
			}
			return &editCommand{id: id, input: in}, nil
		case "delete":
			id, err := intParam(r, "id")
			if err != nil {
				return nil, invalidInput(err)
			}
			return &deleteCommand{id: id}, nil
		default:
			return nil, invalidAction(action)
		}
	case http.MethodGet:
		switch action {
		case "list":
			from, err := timestampParam(r, "from")
			if err != nil {
				return nil, invalidInput(err)
			}
			to, err := timestampParam(r, "to")
			if err != nil {
				return nil, invalidInput(err)
			}
			return &listCommand{from: from, to: to}, nil
		case "edit":
			id, err := intParam(r, "id")
			if err != nil {
				return nil, invalidInput(err)
			}
			return &getCommand{id: id}, nil
		case "list_categories":
			return &listCategoriesCommand{}, nil
		default:
			return nil, invalidAction(action)
		}
	default:
		return nil, invalidRequest(r.Method)
	}
}

func entryInput(r *http.Request) (core.EntryInput, error) {
	category, err := intParam(r, "category")
	if err != nil {
		return core.EntryInput{}, err
	}
	value, err := valueParam(r, "value")
	if err != nil {
		return core.EntryInput{}, err
	}
	at, err := timestampParam(r, "dt")
	if err != nil {
		return core.EntryInput{}, err
	}
	return core.EntryInput{
		CategoryID:  category,
		At:          at,
		Description: param(r, "desc"),
		Value:       value,
	}, nil
}

type addCommand struct {
	input core.EntryInput
}

func (c *addCommand) execute(w http.ResponseWriter, r *http.Request, s *Server) {
	view, err := s.repo.Add(r.Context(), c.input)
	if err != nil {
		s.writeRepositoryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type editCommand struct {
	id    int64
	input core.EntryInput
}

func (c *editCommand) execute(w http.ResponseWriter, r *http.Request, s *Server) {
	view, err := s.repo.Edit(r.Context(), c.id, c.input)
	if err != nil {
		s.writeRepositoryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type deleteCommand struct {
	id int64
}

func (c *deleteCommand) execute(w http.ResponseWriter, r *http.Request, s *Server) {
	if err := s.repo.Delete(r.Context(), c.id); err != nil {
		s.writeRepositoryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": c.id, "deleted": true})
}

type listCommand struct {
	from, to core.Timestamp
}

func (c *listCommand) execute(w http.ResponseWriter, r *http.Request, s *Server) {
	views, err := s.repo.ListByRange(r.Context(), c.from, c.to)
	if err != nil {
		s.writeRepositoryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": views,
		"count":   len(views),
	})
}

type getCommand struct {
	id int64
}

func (c *getCommand) execute(w http.ResponseWriter, r *http.Request, s *Server) {
	view, err := s.repo.GetByID(r.Context(), c.id)
	if err != nil {
		s.writeRepositoryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": view})
}

type listCategoriesCommand struct{}

func (c *listCategoriesCommand) execute(w http.ResponseWriter, r *http.Request, s *Server) {
	cats, err := s.repo.ListCategories(r.Context())
	if err != nil {
		s.writeRepositoryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

// writeRepositoryError maps repository failures onto the API error
// contract. Backend error details ride along in more_info.sql_error
// only when debug mode is on.
func (s *Server) writeRepositoryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, ledger.ErrCategoryNotFound):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, core.ErrInvalidTimestamp), errors.Is(err, core.ErrInvalidValue),
		errors.Is(err, core.ErrInvalidInput):
		writeError(w, http.StatusMethodNotAllowed, err.Error(), nil)
	default:
		var storageErr *store.StorageError
		var moreInfo map[string]any
		if s.debug && errors.As(err, &storageErr) {
			moreInfo = map[string]any{"sql_error": storageErr.Error()}
		}
		writeError(w, http.StatusInternalServerError, "storage failure", moreInfo)
	}
}
