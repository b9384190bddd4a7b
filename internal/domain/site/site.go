// Package site sirve las páginas estáticas del sitio público y del panel,
// y el feed de Instagram de demostración.
package site

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"vet-clinic/internal/platform/logger"
	"vet-clinic/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

type InstagramPost struct {
	ID      int    `json:"id"`
	Image   string `json:"image"`
	Caption string `json:"caption"`
	Likes   int    `json:"likes"`
	Date    string `json:"date"`
}

// Fijo: no hay integración real con Instagram.
var demoPosts = []InstagramPost{
	{ID: 1, Image: "/images/insta1.jpg", Caption: "Наши пушистые пациенты всегда в надежных руках! 🐾", Likes: 45, Date: "2024-01-15"},
	{ID: 2, Image: "/images/insta2.jpg", Caption: "Современное оборудование для точной диагностики 🔬", Likes: 32, Date: "2024-01-14"},
	{ID: 3, Image: "/images/insta3.jpg", Caption: "Заботливый уход за каждым питомцем ❤️", Likes: 67, Date: "2024-01-13"},
}

// pages: ruta -> archivo dentro de staticDir.
var pages = map[string]string{
	"/":      "index.html",
	"/login": "login.html",
	"/admin": "admin.html",
}

// RegisterRoutes monta el feed siempre; las páginas y assets solo si staticDir existe.
// /admin se sirve sin sesión: el propio panel consulta /api/admin/session.
// Cualquier ruta desconocida bajo /api/ responde 404 JSON.
func RegisterRoutes(r chi.Router, staticDir string, log logger.Logger) {
	r.Get("/api/instagram-posts", instagramPostsHandler())

	var assets http.Handler
	if staticDir != "" {
		if fi, err := os.Stat(staticDir); err != nil || !fi.IsDir() {
			log.Warn("static dir not found, pages disabled", logger.Fields{"dir": staticDir})
		} else {
			for route, file := range pages {
				r.Get(route, pageHandler(filepath.Join(staticDir, file)))
			}
			assets = http.FileServer(noListingFS{http.Dir(staticDir)})
		}
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if assets == nil || strings.HasPrefix(req.URL.Path, "/api/") ||
			(req.Method != http.MethodGet && req.Method != http.MethodHead) {
			respond.Error(w, http.StatusNotFound, "not found")
			return
		}
		assets.ServeHTTP(w, req)
	})
}

// noListingFS oculta los directorios sin index.html para que el FileServer no los liste.
type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if fi.IsDir() {
		index, err := n.fs.Open(path.Join(name, "index.html"))
		if err != nil {
			_ = f.Close()
			return nil, os.ErrNotExist
		}
		_ = index.Close()
	}
	return f, nil
}

// instagramPostsHandler godoc
// @Summary Posts de Instagram (demo)
// @Tags site
// @Produce json
// @Success 200 {array} InstagramPost
// @Router /api/instagram-posts [get]
func instagramPostsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, demoPosts)
	}
}

func pageHandler(file string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, file)
	}
}
