package playwright

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"vet-clinic/internal/report"

	pw "github.com/playwright-community/playwright-go"
)

var ErrClosed = errors.New("rasterizer closed")

// Rasterizer imprime HTML a PDF con Chromium headless (equivalente a puppeteer page.pdf).
// El browser se lanza en el primer uso y se reutiliza; cada render usa su propia página.
type Rasterizer struct {
	mu      sync.Mutex
	pw      *pw.Playwright
	browser pw.Browser
	closed  bool

	timeout time.Duration
	install bool

	launch       func() (pw.Browser, error)
	closeBrowser func(pw.Browser) error
}

type Options struct {
	// Timeout por render; 0 => 30s.
	Timeout time.Duration
	// InstallBrowsers descarga driver + chromium si faltan (útil en contenedores).
	InstallBrowsers bool
}

func New(opts Options) *Rasterizer {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	r := &Rasterizer{timeout: timeout, install: opts.InstallBrowsers}
	r.launch = r.launchChromium
	r.closeBrowser = func(b pw.Browser) error { return b.Close() }
	return r
}

func (r *Rasterizer) ensureBrowser() (pw.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if r.browser != nil && r.browser.IsConnected() {
		return r.browser, nil
	}

	// el browser anterior se cayó: liberar lo que quede antes de relanzar
	if r.browser != nil {
		_ = r.closeBrowser(r.browser)
		r.browser = nil
	}

	b, err := r.launch()
	if err != nil {
		return nil, err
	}
	r.browser = b
	return b, nil
}

// launchChromium arranca el driver la primera vez; se llama con r.mu tomado.
func (r *Rasterizer) launchChromium() (pw.Browser, error) {
	if r.pw == nil {
		if r.install {
			if err := pw.Install(&pw.RunOptions{Browsers: []string{"chromium"}}); err != nil {
				return nil, fmt.Errorf("install playwright: %w", err)
			}
		}
		p, err := pw.Run()
		if err != nil {
			return nil, fmt.Errorf("start playwright: %w", err)
		}
		r.pw = p
	}

	b, err := r.pw.Chromium.Launch(pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	return b, nil
}

// renderTimeout acota el render al menor entre r.timeout y lo que le queda a ctx.
// Nunca devuelve <= 0: Playwright interpreta 0 como "sin timeout".
func (r *Rasterizer) renderTimeout(ctx context.Context) (time.Duration, error) {
	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left <= 0 {
			return 0, context.DeadlineExceeded
		}
		if left < timeout {
			timeout = left
		}
	}
	if timeout < time.Millisecond {
		timeout = time.Millisecond
	}
	return timeout, nil
}

func (r *Rasterizer) PDF(ctx context.Context, html []byte, opts report.PageOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}
	defer page.Close()

	timeout, err := r.renderTimeout(ctx)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := page.SetContent(string(html), pw.PageSetContentOptions{
		WaitUntil: pw.WaitUntilStateNetworkidle,
		Timeout:   pw.Float(float64(timeout.Milliseconds()) + 1),
	}); err != nil {
		return nil, fmt.Errorf("set content: %w", err)
	}

	// page.PDF no acepta timeout: se corre aparte y se cierra la página si ctx vence.
	type result struct {
		pdf []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := page.PDF(pw.PagePdfOptions{
			Format:          pw.String(opts.Format),
			PrintBackground: pw.Bool(opts.PrintBackground),
			Margin: &pw.Margin{
				Top:    pw.String(opts.MarginTop),
				Right:  pw.String(opts.MarginRight),
				Bottom: pw.String(opts.MarginBottom),
				Left:   pw.String(opts.MarginLeft),
			},
		})
		done <- result{pdf: out, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("print pdf: %w", res.err)
		}
		return res.pdf, nil
	case <-ctx.Done():
		_ = page.Close()
		return nil, fmt.Errorf("print pdf: %w", ctx.Err())
	}
}

// Close cierra browser y driver. Idempotente.
func (r *Rasterizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error
	if r.browser != nil {
		errs = append(errs, r.browser.Close())
	}
	if r.pw != nil {
		errs = append(errs, r.pw.Stop())
	}
	return errors.Join(errs...)
}
