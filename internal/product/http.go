package product

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ProductCRUD/pkg/kit"
)

const (
	MsgNoProducts = "No products available"
	MsgNotFound   = "Product not found"

	maxBodyBytes = 1 << 20
)

var errBadJSON = kit.NewHTTPError(http.StatusBadRequest, "Invalid JSON body")

type Server struct {
	Store     Store
	Validator *Validator
	Log       *zap.Logger
}

func NewServer(store Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		Store:     store,
		Validator: NewValidator(),
		Log:       log,
	}
}

type listResp struct {
	Success  bool      `json:"success"`
	Products []Product `json:"products"`
}

type createResp struct {
	Success bool    `json:"success"`
	Product Product `json:"product"`
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.List(r.Context())
	if err != nil {
		s.Log.Error("list products failed", zap.Error(err))
		kit.WriteError(w, err)
		return
	}
	if len(products) == 0 {
		kit.WriteFailure(w, http.StatusInternalServerError, MsgNoProducts)
		return
	}
	kit.WriteJSON(w, http.StatusOK, listResp{Success: true, Products: products})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, ok, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.Log.Error("get product failed", zap.Error(err), zap.String("id", id))
		kit.WriteError(w, err)
		return
	}
	if !ok {
		s.Log.Debug("product not found", zap.String("id", id))
		kit.WriteFailure(w, http.StatusNotFound, MsgNotFound)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		kit.WriteError(w, err)
		return
	}

	f, fail := s.Validator.Check(Input{
		Name:        body["name"],
		Description: body["description"],
		Price:       body["price"],
	})
	if fail != nil {
		s.Log.Debug("create rejected", zap.String("rule", fail.Rule))
		kit.WriteFailure(w, http.StatusBadRequest, fail.Message)
		return
	}

	p := NewProduct(f.Name, f.Description, f.Price)
	if err := s.Store.Append(r.Context(), p); err != nil {
		s.Log.Error("create product failed", zap.Error(err), zap.String("id", p.ID))
		kit.WriteError(w, err)
		return
	}

	s.Log.Info("product created", zap.String("id", p.ID))
	kit.WriteJSON(w, http.StatusCreated, createResp{Success: true, Product: p})
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	body, err := decodeBody(w, r)
	if err != nil {
		kit.WriteError(w, err)
		return
	}

	p, err := s.Store.Update(r.Context(), id, func(cur Product) (Product, error) {
		in := Input{Name: cur.Name, Description: cur.Description, Price: cur.Price}
		if v, ok := body["name"]; ok {
			in.Name = v
		}
		if v, ok := body["description"]; ok {
			in.Description = v
		}
		if v, ok := body["price"]; ok {
			in.Price = v
		}

		f, fail := s.Validator.Check(in)
		if fail != nil {
			return Product{}, fail
		}
		return Product{ID: cur.ID, Name: f.Name, Description: f.Description, Price: f.Price}, nil
	})

	var fail *RuleFailure
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		kit.WriteFailure(w, http.StatusNotFound, MsgNotFound)
		return
	case errors.As(err, &fail):
		s.Log.Debug("update rejected", zap.String("id", id), zap.String("rule", fail.Rule))
		kit.WriteFailure(w, http.StatusBadRequest, fail.Message)
		return
	default:
		s.Log.Error("update product failed", zap.Error(err), zap.String("id", id))
		kit.WriteError(w, err)
		return
	}

	s.Log.Info("product updated", zap.String("id", p.ID))
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := s.Store.Delete(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		kit.WriteFailure(w, http.StatusNotFound, MsgNotFound)
		return
	}
	if err != nil {
		s.Log.Error("delete product failed", zap.Error(err), zap.String("id", id))
		kit.WriteError(w, err)
		return
	}

	s.Log.Info("product deleted", zap.String("id", p.ID))
	kit.WriteJSON(w, http.StatusOK, p)
}

// decodeBody reads a JSON object. An empty body decodes to an empty object.
func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, kit.NewHTTPError(http.StatusRequestEntityTooLarge, "Request body too large")
		}
		return nil, errBadJSON
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errBadJSON
	}

	if body == nil {
		body = map[string]any{}
	}
	return body, nil
}
