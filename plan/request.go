package plan

import (
	"context"

	"github.com/google/uuid"
)

// Request is one message on the velocity filter input socket.
type Request struct {
	ID       string   `json:"id,omitempty"`
	Order    Order    `json:"order,omitempty"`
	Scenario Scenario `json:"scenario"`
}

type Response struct {
	ID     string  `json:"id"`
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// Handler runs requests against a filter, filling in missing ids, orders and
// scenario limits from its defaults.
type Handler struct {
	Run      func(ctx context.Context, sc Scenario, order Order) (Result, error)
	Order    Order
	Defaults func(Scenario) Scenario
	NewID    func() string
}

func (h Handler) Handle(ctx context.Context, req Request) Response {
	id := req.ID
	if id == "" {
		if h.NewID != nil {
			id = h.NewID()
		} else {
			id = uuid.NewString()
		}
	}
	order := req.Order
	if order == "" {
		order = h.Order
	}
	order, err := ParseOrder(string(order))
	if err != nil {
		return Response{ID: id, Error: err.Error()}
	}
	sc := req.Scenario
	if h.Defaults != nil {
		sc = h.Defaults(sc)
	}
	res, err := h.Run(ctx, sc, order)
	if err != nil {
		return Response{ID: id, Error: err.Error()}
	}
	return Response{ID: id, Result: &res}
}
