package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Zhousiru/clashub/internal/clash"
	"github.com/Zhousiru/clashub/internal/repository"
	"github.com/Zhousiru/clashub/internal/service"
)

type collectionItem struct {
	ID        string
	URL       string
	APIPath   string
	UpdatedAt time.Time
}

type collectionView struct {
	Kind           string
	Field          string
	TitleKey       string
	DescriptionKey string
	URLLabelKey    string
	Items          []collectionItem
	Editing        *collectionItem
	SuggestedID    string
}

// urlCollection adapts the providers and fetchers repositories, which share the id + URL form.
type urlCollection struct {
	kind    string
	field   string
	kindKey string
	list    func(ctx context.Context) ([]collectionItem, error)
	save    func(ctx context.Context, id, target string) error
	remove  func(ctx context.Context, id string) (bool, error)
}

func (h *PageHandler) providers() urlCollection {
	repo := h.store.ProxyProviders()
	return urlCollection{
		kind:    "proxy-providers",
		field:   "subscriptionUrl",
		kindKey: "kind.proxy_provider",
		list: func(ctx context.Context) ([]collectionItem, error) {
			records, err := repo.List(ctx)
			if err != nil {
				return nil, err
			}
			items := make([]collectionItem, 0, len(records))
			for _, p := range records {
				items = append(items, collectionItem{ID: p.ID, URL: p.SubscriptionURL, APIPath: "/api/v1/proxy-provider/" + p.ID, UpdatedAt: p.UpdatedAt})
			}
			return items, nil
		},
		save: func(ctx context.Context, id, target string) error {
			_, err := repo.Save(ctx, repository.ProxyProvider{ID: id, SubscriptionURL: target})
			return err
		},
		remove: repo.Delete,
	}
}

func (h *PageHandler) fetchers() urlCollection {
	repo := h.store.Fetchers()
	return urlCollection{
		kind:    "fetchers",
		field:   "url",
		kindKey: "kind.fetcher",
		list: func(ctx context.Context) ([]collectionItem, error) {
			records, err := repo.List(ctx)
			if err != nil {
				return nil, err
			}
			items := make([]collectionItem, 0, len(records))
			for _, f := range records {
				items = append(items, collectionItem{ID: f.ID, URL: f.URL, APIPath: "/api/v1/fetcher/" + f.ID, UpdatedAt: f.UpdatedAt})
			}
			return items, nil
		},
		save: func(ctx context.Context, id, target string) error {
			_, err := repo.Save(ctx, repository.Fetcher{ID: id, URL: target})
			return err
		},
		remove: repo.Delete,
	}
}

// ProxyProvidersPage lists providers; ?edit=<id> opens the edit form.
func (h *PageHandler) ProxyProvidersPage(w http.ResponseWriter, r *http.Request) {
	h.showCollection(w, r, h.providers(), Flash{})
}

// ProxyProvidersAction handles add, edit and delete.
func (h *PageHandler) ProxyProvidersAction(w http.ResponseWriter, r *http.Request) {
	h.collectionAction(w, r, h.providers())
}

// FetchersPage lists fetchers; ?edit=<id> opens the edit form.
func (h *PageHandler) FetchersPage(w http.ResponseWriter, r *http.Request) {
	h.showCollection(w, r, h.fetchers(), Flash{})
}

// FetchersAction handles add, edit and delete.
func (h *PageHandler) FetchersAction(w http.ResponseWriter, r *http.Request) {
	h.collectionAction(w, r, h.fetchers())
}

func (h *PageHandler) collectionAction(w http.ResponseWriter, r *http.Request, c urlCollection) {
	if err := r.ParseForm(); err != nil {
		h.showCollection(w, r, c, Flash{Error: h.t(r, "flash.operation_failed", err.Error())})
		return
	}
	ctx := r.Context()
	kind := h.t(r, c.kindKey)
	action := formValue(r, "action")
	rawID := formValue(r, "id")

	var flash Flash
	switch action {
	case "add", "edit":
		target := formValue(r, c.field)
		if rawID == "" || target == "" {
			flash.Error = h.t(r, "flash.required_fields")
			break
		}
		if _, err := service.ValidateURL(target); err != nil {
			flash.Error = h.t(r, "flash.invalid_url")
			break
		}
		id, err := service.SanitizeID(rawID)
		if err != nil {
			flash.Error = h.t(r, "flash.invalid_id")
			break
		}
		if err := c.save(ctx, id, target); err != nil {
			h.logger.Error("save record failed", "kind", c.kind, "id", id, "error", err)
			flash.Error = h.t(r, "flash.operation_failed", err.Error())
			break
		}
		key := "flash.added"
		if action == "edit" {
			key = "flash.updated"
		}
		flash.Success = h.t(r, key, kind, id)
	case "delete":
		flash = h.deleteRecord(r, kind, rawID, c.remove)
	default:
		flash.Error = h.t(r, "flash.invalid_action")
	}
	h.showCollection(w, r, c, flash)
}

func (h *PageHandler) deleteRecord(r *http.Request, kind, id string, remove func(context.Context, string) (bool, error)) Flash {
	if id == "" {
		return Flash{Error: h.t(r, "flash.id_required")}
	}
	deleted, err := remove(r.Context(), id)
	if err != nil {
		h.logger.Error("delete record failed", "kind", kind, "id", id, "error", err)
		return Flash{Error: h.t(r, "flash.operation_failed", err.Error())}
	}
	if !deleted {
		return Flash{Error: h.t(r, "flash.not_found", kind)}
	}
	return Flash{Success: h.t(r, "flash.deleted", kind, id)}
}

func (h *PageHandler) showCollection(w http.ResponseWriter, r *http.Request, c urlCollection, flash Flash) {
	items, err := c.list(r.Context())
	if err != nil {
		h.logger.Error("list records failed", "kind", c.kind, "error", err)
		flash.Error = h.t(r, "flash.operation_failed", err.Error())
	}
	data := collectionView{
		Kind:           c.kind,
		Field:          c.field,
		TitleKey:       "nav." + titleSuffix(c.kind),
		DescriptionKey: c.kind + ".description",
		URLLabelKey:    c.kind + ".url_label",
		Items:          items,
		SuggestedID:    h.newID(),
	}
	if r.Method == http.MethodGet {
		if editID := r.URL.Query().Get("edit"); editID != "" {
			for i := range items {
				if items[i].ID == editID {
					data.Editing = &items[i]
					break
				}
			}
		}
	}
	h.renderer.render(w, r, http.StatusOK, page{Name: "collection", Active: c.kind, TitleKey: data.TitleKey, Flash: flash, Data: data})
}

func titleSuffix(kind string) string {
	if kind == "proxy-providers" {
		return "providers"
	}
	return kind
}

type configItem struct {
	ID        string
	APIPath   string
	UpdatedAt time.Time
}

type configEditor struct {
	ID      string
	Content string
}

type configsView struct {
	Items       []configItem
	Editing     *configEditor
	SuggestedID string
}

// ConfigsPage lists configs; ?edit=<id> opens the editor.
func (h *PageHandler) ConfigsPage(w http.ResponseWriter, r *http.Request) {
	var editing *configEditor
	if editID := r.URL.Query().Get("edit"); editID != "" {
		cfg, err := h.store.Configs().Get(r.Context(), editID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			h.showConfigs(w, r, nil, Flash{Error: h.t(r, "flash.not_found", h.t(r, "kind.config"))})
			return
		case err != nil:
			h.showConfigs(w, r, nil, Flash{Error: h.t(r, "flash.operation_failed", err.Error())})
			return
		}
		editing = &configEditor{ID: cfg.ID, Content: cfg.Content}
	}
	h.showConfigs(w, r, editing, Flash{})
}

// ConfigsAction handles create, save, format and delete.
func (h *PageHandler) ConfigsAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.showConfigs(w, r, nil, Flash{Error: h.t(r, "flash.operation_failed", err.Error())})
		return
	}
	ctx := r.Context()
	repo := h.store.Configs()
	kind := h.t(r, "kind.config")
	rawID := formValue(r, "id")
	content := r.PostForm.Get("content")

	switch formValue(r, "action") {
	case "create":
		id, flash := h.configID(r, rawID)
		if flash.Error != "" {
			h.showConfigs(w, r, nil, flash)
			return
		}
		_, err := repo.Get(ctx, id)
		switch {
		case err == nil:
			h.showConfigs(w, r, nil, Flash{Error: h.t(r, "flash.config_exists", id)})
			return
		case !errors.Is(err, repository.ErrNotFound):
			h.showConfigs(w, r, nil, Flash{Error: h.t(r, "flash.operation_failed", err.Error())})
			return
		}
		if _, err := repo.Save(ctx, repository.Config{ID: id}); err != nil {
			h.logger.Error("create config failed", "id", id, "error", err)
			h.showConfigs(w, r, nil, Flash{Error: h.t(r, "flash.operation_failed", err.Error())})
			return
		}
		h.showConfigs(w, r, &configEditor{ID: id}, Flash{Success: h.t(r, "flash.config_created", id)})
	case "save":
		id, flash := h.configID(r, rawID)
		if flash.Error != "" {
			h.showConfigs(w, r, nil, flash)
			return
		}
		editor := &configEditor{ID: id, Content: content}
		if err := clash.ValidateYAML(content); err != nil {
			h.showConfigs(w, r, editor, Flash{Error: h.t(r, "flash.invalid_yaml", err.Error())})
			return
		}
		if _, err := repo.Save(ctx, repository.Config{ID: id, Content: content}); err != nil {
			h.logger.Error("save config failed", "id", id, "error", err)
			h.showConfigs(w, r, editor, Flash{Error: h.t(r, "flash.operation_failed", err.Error())})
			return
		}
		h.showConfigs(w, r, editor, Flash{Success: h.t(r, "flash.config_saved", id)})
	case "format":
		editor := &configEditor{ID: rawID, Content: content}
		formatted, err := clash.FormatYAML(content)
		if err != nil {
			h.showConfigs(w, r, editor, Flash{Error: h.t(r, "flash.invalid_yaml", err.Error())})
			return
		}
		editor.Content = formatted
		h.showConfigs(w, r, editor, Flash{Success: h.t(r, "flash.config_formatted")})
	case "delete":
		h.showConfigs(w, r, nil, h.deleteRecord(r, kind, rawID, repo.Delete))
	default:
		h.showConfigs(w, r, nil, Flash{Error: h.t(r, "flash.invalid_action")})
	}
}

func (h *PageHandler) configID(r *http.Request, raw string) (string, Flash) {
	if raw == "" {
		return "", Flash{Error: h.t(r, "flash.id_required")}
	}
	id, err := service.SanitizeID(raw)
	if err != nil {
		return "", Flash{Error: h.t(r, "flash.invalid_id")}
	}
	return id, Flash{}
}

func (h *PageHandler) showConfigs(w http.ResponseWriter, r *http.Request, editing *configEditor, flash Flash) {
	records, err := h.store.Configs().List(r.Context())
	if err != nil {
		h.logger.Error("list configs failed", "error", err)
		flash.Error = h.t(r, "flash.operation_failed", err.Error())
	}
	items := make([]configItem, 0, len(records))
	for _, c := range records {
		items = append(items, configItem{ID: c.ID, APIPath: "/api/v1/config/" + c.ID, UpdatedAt: c.UpdatedAt})
	}
	data := configsView{Items: items, Editing: editing, SuggestedID: h.newID()}
	h.renderer.render(w, r, http.StatusOK, page{Name: "configs", Active: "configs", TitleKey: "configs.title", Flash: flash, Data: data})
}
