package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/email-builder/internal/apperr"
	"github.com/email-builder/internal/logging"
	"github.com/email-builder/internal/model"
	"github.com/email-builder/internal/validation"
	"github.com/google/uuid"
)

type TemplateStore interface {
	Create(ctx context.Context, t *model.Template) (*model.Template, error)
	FindOwned(ctx context.Context, id, userID string) (*model.Template, error)
	ListByOwner(ctx context.Context, userID string) ([]model.Template, error)
	Update(ctx context.Context, t *model.Template) (*model.Template, error)
	Delete(ctx context.Context, id, userID string) (bool, error)
}

type Renderer interface {
	Render(layout string, cfg model.TemplateConfig) (string, error)
	Layout(name string) (string, error)
}

var errTemplateNotFound = apperr.New(apperr.ErrNotFound, "Template not found")

type TemplateService struct {
	templates TemplateStore
	renderer  Renderer
	log       logging.Logger
}

func NewTemplateService(templates TemplateStore, renderer Renderer, log logging.Logger) *TemplateService {
	return &TemplateService{templates: templates, renderer: renderer, log: log}
}

func (s *TemplateService) Create(ctx context.Context, ownerID string, req model.TemplateRequest) (*model.Template, error) {
	name, cfg, err := normalize(req)
	if err != nil {
		return nil, err
	}

	tpl, err := s.templates.Create(ctx, &model.Template{
		UserID: ownerID,
		Name:   name,
		Config: cfg,
		Layout: model.DefaultLayout,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "template created", "template_id", tpl.ID, "user_id", ownerID)
	return tpl, nil
}

func (s *TemplateService) List(ctx context.Context, ownerID string) ([]model.Template, error) {
	tpls, err := s.templates.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if tpls == nil {
		tpls = []model.Template{}
	}
	return tpls, nil
}

func (s *TemplateService) Get(ctx context.Context, ownerID, id string) (*model.Template, error) {
	return s.findOwned(ctx, id, ownerID)
}

func (s *TemplateService) Update(ctx context.Context, ownerID, id string, req model.TemplateRequest) (*model.Template, error) {
	if _, err := s.findOwned(ctx, id, ownerID); err != nil {
		return nil, err
	}

	name, cfg, err := normalize(req)
	if err != nil {
		return nil, err
	}

	tpl, err := s.templates.Update(ctx, &model.Template{ID: id, UserID: ownerID, Name: name, Config: cfg})
	if err != nil {
		return nil, err
	}
	// Deleted between lookup and update.
	if tpl == nil {
		return nil, errTemplateNotFound
	}

	s.log.Info(ctx, "template updated", "template_id", id, "user_id", ownerID)
	return tpl, nil
}

func (s *TemplateService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.findOwned(ctx, id, ownerID); err != nil {
		return err
	}

	deleted, err := s.templates.Delete(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !deleted {
		return errTemplateNotFound
	}

	s.log.Info(ctx, "template deleted", "template_id", id, "user_id", ownerID)
	return nil
}

// Render returns the finished document and its download filename.
func (s *TemplateService) Render(ctx context.Context, ownerID, id string) (string, string, error) {
	tpl, err := s.findOwned(ctx, id, ownerID)
	if err != nil {
		return "", "", err
	}

	html, err := s.renderer.Render(tpl.Layout, tpl.Config)
	if err != nil {
		return "", "", err
	}
	return html, fmt.Sprintf("template-%s.html", tpl.ID), nil
}

// Layout returns the raw source of a layout; blank selects the default.
func (s *TemplateService) Layout(_ context.Context, name string) (string, error) {
	name = validation.OrDefault(name, model.DefaultLayout)
	src, err := s.renderer.Layout(name)
	if err != nil {
		return "", apperr.New(apperr.ErrNotFound, "Layout not found")
	}
	return src, nil
}

// findOwned resolves id for ownerID. Malformed ids, missing rows and rows of
// other users are indistinguishable.
func (s *TemplateService) findOwned(ctx context.Context, id, ownerID string) (*model.Template, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errTemplateNotFound
	}

	tpl, err := s.templates.FindOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, errTemplateNotFound
	}
	return tpl, nil
}

func normalize(req model.TemplateRequest) (string, model.TemplateConfig, error) {
	var cfg model.TemplateConfig
	if req.Config != nil {
		cfg = *req.Config
	}

	name := strings.TrimSpace(req.Name)
	cfg.Title = strings.TrimSpace(cfg.Title)
	cfg.Content = strings.TrimSpace(cfg.Content)

	cfg.ImageURL = strings.TrimSpace(cfg.ImageURL)
	cfg.Styles = model.TemplateStyles{
		TitleColor:      validation.OrDefault(cfg.Styles.TitleColor, model.DefaultTitleColor),
		ContentColor:    validation.OrDefault(cfg.Styles.ContentColor, model.DefaultContentColor),
		BackgroundColor: validation.OrDefault(cfg.Styles.BackgroundColor, model.DefaultBackgroundColor),
		FontSize:        validation.OrDefault(cfg.Styles.FontSize, model.DefaultFontSize),
	}

	invalid := apperr.Fields{}
	if name == "" {
		invalid.Add("name", "Template name is required")
	}
	if cfg.Title == "" {
		invalid.Add("title", "Template title is required")
	}
	if cfg.Content == "" {
		invalid.Add("content", "Template content is required")
	}
	for field, value := range map[string]string{
		"styles.titleColor":      cfg.Styles.TitleColor,
		"styles.contentColor":    cfg.Styles.ContentColor,
		"styles.backgroundColor": cfg.Styles.BackgroundColor,
	} {
		if !validation.IsCSSColor(value) {
			invalid.Add(field, "Must be a hex, named, rgb() or hsl() color")
		}
	}
	if !validation.IsCSSLength(cfg.Styles.FontSize) {
		invalid.Add("styles.fontSize", "Must be a size such as 16px or 1.2em")
	}
	if err := invalid.Err("Validation failed"); err != nil {
		return "", model.TemplateConfig{}, err
	}
	return name, cfg, nil
}
