// Package report arma el PDF de clientes: HTML de layout fijo -> Rasterizer (Chromium).
package report

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"vet-clinic/internal/domain/clients"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ErrRender = errors.New("pdf render failed")

// Tipos fijos del resumen; cualquier otro tipo no nulo cae en "Других".
const (
	PetDog    = "собака"
	PetCat    = "кошка"
	PetBird   = "птица"
	PetRodent = "грызун"
)

const (
	placeholder   = "-"
	maxMessageLen = 30

	dateLayout      = "02.01.2006"
	timestampLayout = "02.01.2006 15:04:05"
)

//go:embed templates/clients.html.tmpl
var templatesFS embed.FS

var clientsTmpl = template.Must(template.ParseFS(templatesFS, "templates/clients.html.tmpl"))

// PageOptions describe el formato de impresión.
type PageOptions struct {
	Format          string
	MarginTop       string
	MarginRight     string
	MarginBottom    string
	MarginLeft      string
	PrintBackground bool
}

func DefaultPageOptions() PageOptions {
	return PageOptions{
		Format:          "A4",
		MarginTop:       "20mm",
		MarginRight:     "20mm",
		MarginBottom:    "20mm",
		MarginLeft:      "20mm",
		PrintBackground: true,
	}
}

// Rasterizer convierte HTML en PDF.
type Rasterizer interface {
	PDF(ctx context.Context, html []byte, opts PageOptions) ([]byte, error)
}

type Generator struct {
	raster Rasterizer
	loc    *time.Location
	clinic string
	page   PageOptions
	now    func() time.Time
}

type Options struct {
	Location   *time.Location // nil => time.Local
	ClinicName string
}

func NewGenerator(raster Rasterizer, opts Options) *Generator {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	clinic := strings.TrimSpace(opts.ClinicName)
	if clinic == "" {
		clinic = "Ветеринарная клиника Федорова"
	}
	return &Generator{
		raster: raster,
		loc:    loc,
		clinic: clinic,
		page:   DefaultPageOptions(),
		now:    time.Now,
	}
}

// Counts es el resumen del encabezado del reporte.
type Counts struct {
	Total   int
	Dogs    int
	Cats    int
	Birds   int
	Rodents int
	Other   int
}

func CountPetTypes(records []clients.Client) Counts {
	c := Counts{Total: len(records)}
	for _, r := range records {
		if r.PetType == nil || *r.PetType == "" {
			continue
		}
		switch *r.PetType {
		case PetDog:
			c.Dogs++
		case PetCat:
			c.Cats++
		case PetBird:
			c.Birds++
		case PetRodent:
			c.Rodents++
		default:
			c.Other++
		}
	}
	return c
}

type statItem struct {
	Label string
	Value string
}

type row struct {
	Index     int
	FirstName string
	LastName  string
	Phone     string
	Email     string
	PetName   string
	PetType   string
	Message   string
	Date      string
}

type pageData struct {
	Title       string
	Clinic      string
	GeneratedAt string
	Year        int
	Stats       []statItem
	Rows        []row
}

// Render produce el HTML; es determinístico para (records, now).
func (g *Generator) Render(records []clients.Client, now time.Time) ([]byte, error) {
	local := now.In(g.loc)
	counts := CountPetTypes(records)
	p := message.NewPrinter(language.Russian)

	data := pageData{
		Title:       "Клиенты: " + g.clinic,
		Clinic:      g.clinic,
		GeneratedAt: local.Format(timestampLayout),
		Year:        local.Year(),
		Stats: []statItem{
			{Label: "Всего клиентов", Value: p.Sprintf("%d", counts.Total)},
			{Label: "Собак", Value: p.Sprintf("%d", counts.Dogs)},
			{Label: "Кошек", Value: p.Sprintf("%d", counts.Cats)},
			{Label: "Птиц", Value: p.Sprintf("%d", counts.Birds)},
			{Label: "Грызунов", Value: p.Sprintf("%d", counts.Rodents)},
			{Label: "Других", Value: p.Sprintf("%d", counts.Other)},
		},
	}

	for i, r := range records {
		data.Rows = append(data.Rows, row{
			Index:     i + 1,
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Phone:     orDash(r.Phone),
			Email:     orDash(r.Email),
			PetName:   orDash(r.PetName),
			PetType:   orDash(r.PetType),
			Message:   truncate(orDash(r.Message), maxMessageLen),
			Date:      r.CreatedAt.In(g.loc).Format(dateLayout),
		})
	}

	var buf bytes.Buffer
	if err := clientsTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: template: %w", ErrRender, err)
	}
	return buf.Bytes(), nil
}

// Generate rinde y rasteriza. Sin salida parcial: cualquier falla => ErrRender.
func (g *Generator) Generate(ctx context.Context, records []clients.Client) ([]byte, error) {
	html, err := g.Render(records, g.now())
	if err != nil {
		return nil, err
	}
	if g.raster == nil {
		return nil, fmt.Errorf("%w: no rasterizer configured", ErrRender)
	}

	pdf, err := g.raster.PDF(ctx, html, g.page)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	if len(pdf) == 0 {
		return nil, fmt.Errorf("%w: empty output", ErrRender)
	}
	return pdf, nil
}

// Filename: clients_<YYYY-MM-DD>.pdf (fecha UTC).
func Filename(now time.Time) string {
	return "clients_" + now.UTC().Format("2006-01-02") + ".pdf"
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return placeholder
	}
	return *s
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
