package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vet-clinic/internal/domain/clients"
	"vet-clinic/internal/platform/httpclient"
	"vet-clinic/internal/ports/auth"
)

// defaultPageSize coincide con el max-rows por defecto de Supabase.
const defaultPageSize = 1000

// ClientsRepo implementa clients.Repository sobre PostgREST (/rest/v1).
// Las lecturas usan el access token del contexto (auth.WithAccessToken) si lo hay;
// si no, la anon key.
type ClientsRepo struct {
	client   *Client
	pageSize int
}

func NewClientsRepo(client *Client) *ClientsRepo {
	return &ClientsRepo{client: client, pageSize: defaultPageSize}
}

// clientRow es la fila tal como la devuelve PostgREST.
type clientRow struct {
	ID        json.RawMessage `json:"id"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Phone     *string         `json:"phone"`
	Email     *string         `json:"email"`
	PetName   *string         `json:"pet_name"`
	PetType   *string         `json:"pet_type"`
	Message   *string         `json:"message"`
	CreatedAt time.Time       `json:"created_at"`
}

type insertRow struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	PetName   *string `json:"pet_name"`
	PetType   *string `json:"pet_type"`
	Message   *string `json:"message"`
}

func (r *ClientsRepo) path(query url.Values) string {
	p := "/rest/v1/" + url.PathEscape(r.client.table)
	if len(query) > 0 {
		p += "?" + query.Encode()
	}
	return p
}

func (r *ClientsRepo) Insert(ctx context.Context, in clients.NewClient) (clients.Client, error) {
	headers := r.client.bearer(auth.AccessTokenFrom(ctx))
	headers["Prefer"] = "return=representation"

	var rows []clientRow
	err := r.client.http.DoJSON(ctx, http.MethodPost, r.path(url.Values{"select": {"*"}}), headers,
		[]insertRow{{
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Phone:     in.Phone,
			Email:     in.Email,
			PetName:   in.PetName,
			PetType:   in.PetType,
			Message:   in.Message,
		}}, &rows)
	if err != nil {
		return clients.Client{}, fmt.Errorf("supabase insert: %w", err)
	}
	if len(rows) == 0 {
		return clients.Client{}, fmt.Errorf("supabase insert: empty representation")
	}
	return rows[0].toClient(), nil
}

func (r *ClientsRepo) ListNewestFirst(ctx context.Context) ([]clients.Client, error) {
	q := url.Values{"select": {"*"}, "order": {"created_at.desc"}}
	rows, err := fetchAll[clientRow](ctx, r, q)
	if err != nil {
		return nil, fmt.Errorf("supabase list: %w", err)
	}

	out := make([]clients.Client, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toClient())
	}
	return out, nil
}

// Count usa HEAD + Prefer: count=exact; el total viene en Content-Range ("0-9/42" o "*/0").
func (r *ClientsRepo) Count(ctx context.Context) (int, error) {
	headers := r.client.bearer(auth.AccessTokenFrom(ctx))
	headers["Prefer"] = "count=exact"

	h, err := r.client.http.Do(ctx, httpclient.Request{
		Method:  http.MethodHead,
		Path:    r.path(url.Values{"select": {"*"}}),
		Headers: headers,
	})
	if err != nil {
		return 0, fmt.Errorf("supabase count: %w", err)
	}
	return parseContentRangeTotal(h.Get("Content-Range"))
}

func (r *ClientsRepo) ListPetTypes(ctx context.Context) ([]string, error) {
	type petTypeRow struct {
		PetType *string `json:"pet_type"`
	}
	// order estable para que las páginas no se solapen
	q := url.Values{"select": {"pet_type"}, "pet_type": {"not.is.null"}, "order": {"created_at.desc"}}
	rows, err := fetchAll[petTypeRow](ctx, r, q)
	if err != nil {
		return nil, fmt.Errorf("supabase pet types: %w", err)
	}

	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.PetType != nil {
			out = append(out, *row.PetType)
		}
	}
	return out, nil
}

// fetchAll pide la tabla de a pageSize filas con Range/Range-Unit y sigue mientras
// Content-Range indique que faltan filas. PostgREST corta cada respuesta en max-rows
// (1000 por defecto en Supabase) aunque se pida más.
func fetchAll[T any](ctx context.Context, r *ClientsRepo, q url.Values) ([]T, error) {
	var out []T
	for offset := 0; ; {
		headers := r.client.bearer(auth.AccessTokenFrom(ctx))
		headers["Range-Unit"] = "items"
		headers["Range"] = fmt.Sprintf("%d-%d", offset, offset+r.pageSize-1)
		headers["Prefer"] = "count=exact"

		var page []T
		h, err := r.client.http.Do(ctx, httpclient.Request{
			Method:  http.MethodGet,
			Path:    r.path(q),
			Headers: headers,
			Out:     &page,
		})
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			return out, nil
		}
		out = append(out, page...)
		offset += len(page)

		total, err := parseContentRangeTotal(h.Get("Content-Range"))
		if err != nil {
			return nil, err
		}
		if offset >= total {
			return out, nil
		}
	}
}

func (row clientRow) toClient() clients.Client {
	return clients.Client{
		ID:        rawID(row.ID),
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Phone:     row.Phone,
		Email:     row.Email,
		PetName:   row.PetName,
		PetType:   row.PetType,
		Message:   row.Message,
		CreatedAt: row.CreatedAt,
	}
}

// rawID acepta id numérico (bigserial) o string (uuid).
func rawID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func parseContentRangeTotal(v string) (int, error) {
	i := strings.LastIndex(v, "/")
	if i < 0 || i == len(v)-1 {
		return 0, fmt.Errorf("supabase count: bad Content-Range %q", v)
	}
	total := v[i+1:]
	if total == "*" {
		return 0, fmt.Errorf("supabase count: total not provided in Content-Range %q", v)
	}
	n, err := strconv.Atoi(total)
	if err != nil {
		return 0, fmt.Errorf("supabase count: bad Content-Range %q: %w", v, err)
	}
	return n, nil
}
