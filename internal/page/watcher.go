package page

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"go.uber.org/zap"

	"actionnerd/internal/action"
	"actionnerd/internal/logging"
	"actionnerd/internal/overlay"
)

const (
	gesturePollInterval = 250 * time.Millisecond
	selectionSettleMs   = 600
)

// Watcher attaches to a running browser over the DevTools protocol and
// turns in-page gestures into Context snapshots. It injects passive
// listeners once per page, buffers gesture events in the page, and
// drains the buffer on a poll loop so the page never blocks on us.
type Watcher struct {
	browser  *rod.Browser
	page     *rod.Page
	gestures chan overlay.GestureMsg
	log      *zap.Logger
}

// NewWatcher returns an unconnected watcher. Call Connect before Run.
func NewWatcher() *Watcher {
	return &Watcher{
		gestures: make(chan overlay.GestureMsg, 4),
		log:      logging.Get(logging.CategoryPage),
	}
}

// Connect attaches to the browser behind controlURL and binds to the
// first ordinary page target.
func (w *Watcher) Connect(ctx context.Context, controlURL string) error {
	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to browser: %w", err)
	}
	w.browser = browser

	pages, err := browser.Pages()
	if err != nil {
		return fmt.Errorf("list pages: %w", err)
	}
	for _, p := range pages {
		info, err := p.Info()
		if err != nil {
			continue
		}
		if strings.HasPrefix(info.URL, "devtools://") || strings.HasPrefix(info.URL, "chrome://") {
			continue
		}
		w.page = p
		w.log.Info("attached to page", zap.String("url", info.URL))
		return nil
	}
	return fmt.Errorf("no attachable page found")
}

// Gestures is the stream the overlay consumes.
func (w *Watcher) Gestures() <-chan overlay.GestureMsg {
	return w.gestures
}

// Run installs the gesture hooks and polls the page buffer until ctx
// ends. Selection gestures only fire after the selection has been
// stable for the settle window; alt-click gestures fire immediately.
func (w *Watcher) Run(ctx context.Context) error {
	if w.page == nil {
		return fmt.Errorf("watcher not connected")
	}
	if err := w.installHooks(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(gesturePollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, ev := range w.drainEvents(ctx) {
				w.emit(ctx, ev)
			}
		}
	}
}

type gestureEvent struct {
	Kind      string         `json:"kind"`
	Text      string         `json:"text"`
	Rect      action.Rect    `json:"rect"`
	OuterHTML string         `json:"outerHTML"`
	Ancestry  []pageAncestor `json:"ancestry"`
	URL       string         `json:"url"`
	Title     string         `json:"title"`
}

type pageAncestor struct {
	Tag     string `json:"tag"`
	ID      string `json:"id"`
	Classes string `json:"classes"`
}

func (w *Watcher) installHooks(ctx context.Context) error {
	_, err := w.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS: `
		() => {
			const w = window;
			if (w.__actionnerdHooked) return true;
			w.__actionnerdHooked = true;
			w.__actionnerdEvents = [];

			const rectOf = (r) => ({ x: r.x, y: r.y, width: r.width, height: r.height });
			const ancestryOf = (el) => {
				const out = [];
				let cur = el && el.parentElement;
				while (cur && out.length < 3) {
					out.push({ tag: cur.tagName.toLowerCase(), id: cur.id || '', classes: cur.className || '' });
					cur = cur.parentElement;
				}
				return out;
			};

			let settleTimer = null;
			document.addEventListener('selectionchange', () => {
				if (settleTimer) clearTimeout(settleTimer);
				settleTimer = setTimeout(() => {
					try {
						const sel = w.getSelection();
						const text = sel ? sel.toString() : '';
						if (!text.trim()) {
							w.__actionnerdEvents.push({ kind: 'cleared' });
							return;
						}
						const range = sel.getRangeAt(0);
						w.__actionnerdEvents.push({
							kind: 'selection',
							text: text,
							rect: rectOf(range.getBoundingClientRect()),
							url: location.href,
							title: document.title,
						});
					} catch (e) {}
				}, ` + fmt.Sprint(selectionSettleMs) + `);
			});

			document.addEventListener('click', (ev) => {
				if (!ev.altKey) return;
				try {
					const el = ev.target;
					if (!el || !el.getBoundingClientRect) return;
					let html = el.outerHTML || '';
					if (html.length > 20000) html = html.slice(0, 20000);
					w.__actionnerdEvents.push({
						kind: 'element',
						rect: rectOf(el.getBoundingClientRect()),
						outerHTML: html,
						ancestry: ancestryOf(el),
						url: location.href,
						title: document.title,
					});
				} catch (e) {}
			}, true);
			return true;
		}
		`,
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return fmt.Errorf("install gesture hooks: %w", err)
	}
	return nil
}

func (w *Watcher) drainEvents(ctx context.Context) []gestureEvent {
	res, err := w.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS: `
		() => {
			const buf = Array.isArray(window.__actionnerdEvents) ? window.__actionnerdEvents : [];
			window.__actionnerdEvents = [];
			return buf;
		}
		`,
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil || res == nil || res.Value.Nil() {
		return nil
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return nil
	}
	var events []gestureEvent
	if err := json.Unmarshal(raw, &events); err != nil {
		w.log.Debug("malformed gesture buffer", zap.Error(err))
		return nil
	}
	return events
}

// emit converts a raw event into a snapshot and hands it to the
// overlay. Delivery blocks until the overlay takes it or ctx ends;
// the buffer keeps bursts from stalling the poll loop.
func (w *Watcher) emit(ctx context.Context, ev gestureEvent) {
	var pageCtx *action.Context

	switch ev.Kind {
	case "cleared":
		pageCtx = &action.Context{}
	case "selection":
		pageCtx = &action.Context{
			URL:    ev.URL,
			Title:  ev.Title,
			Domain: domainOf(ev.URL),
			Selection: &action.TextSelection{
				Text: ev.Text,
				Rect: ev.Rect,
			},
		}
	case "element":
		desc, err := BuildElementDescriptor(ev.OuterHTML, convertAncestry(ev.Ancestry), ev.Rect)
		if err != nil {
			w.log.Warn("unparseable element capture", zap.Error(err))
			return
		}
		pageCtx = &action.Context{
			URL:     ev.URL,
			Title:   ev.Title,
			Domain:  domainOf(ev.URL),
			Element: desc,
		}
	default:
		return
	}

	select {
	case w.gestures <- overlay.GestureMsg{Context: pageCtx}:
	case <-ctx.Done():
	}
}

// InsertText places text into the currently focused editable element,
// or fails when focus is not on one.
func (w *Watcher) InsertText(text string) error {
	if w.page == nil {
		return fmt.Errorf("watcher not connected")
	}
	res, err := w.page.Evaluate(&rod.EvalOptions{
		JS: `
		(text) => {
			const el = document.activeElement;
			if (!el) return false;
			if (el.isContentEditable) {
				document.execCommand('insertText', false, text);
				return true;
			}
			const tag = el.tagName ? el.tagName.toLowerCase() : '';
			if (tag === 'input' || tag === 'textarea') {
				const start = el.selectionStart ?? el.value.length;
				const end = el.selectionEnd ?? el.value.length;
				el.value = el.value.slice(0, start) + text + el.value.slice(end);
				el.dispatchEvent(new Event('input', { bubbles: true }));
				return true;
			}
			return false;
		}
		`,
		JSArgs:       []interface{}{text},
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return fmt.Errorf("insert text: %w", err)
	}
	if !res.Value.Bool() {
		return fmt.Errorf("no editable element focused")
	}
	return nil
}

// Close disconnects from the browser without closing it.
func (w *Watcher) Close() {
	if w.browser != nil {
		_ = w.browser.Close()
	}
}

func convertAncestry(in []pageAncestor) []action.AncestorRef {
	if len(in) == 0 {
		return nil
	}
	out := make([]action.AncestorRef, 0, len(in))
	for _, a := range in {
		ref := action.AncestorRef{TagName: a.Tag, ID: a.ID}
		if a.Classes != "" {
			ref.Classes = strings.Fields(a.Classes)
		}
		out = append(out, ref)
	}
	return out
}

func domainOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
