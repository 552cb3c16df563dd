package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/email-builder/internal/apperr"
	"github.com/email-builder/internal/logging"
	"github.com/email-builder/internal/model"
	"github.com/email-builder/internal/render"
	"github.com/email-builder/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTemplateService(t *testing.T) *TemplateService {
	t.Helper()
	r, err := render.New()
	require.NoError(t, err)
	return NewTemplateService(storage.NewMemoryTemplateStore(), r, logging.Discard())
}

func promo() model.TemplateRequest {
	return model.TemplateRequest{
		Name:   "Promo",
		Config: &model.TemplateConfig{Title: "Hi", Content: "<p>hello</p>"},
	}
}

func TestCreate_AppliesDefaults(t *testing.T) {
	svc := newTemplateService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner", promo())
	require.NoError(t, err)
	assert.Equal(t, "default", created.Layout)
	assert.Equal(t, "owner", created.UserID)

	got, err := svc.Get(ctx, "owner", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Promo", got.Name)
	assert.Equal(t, "Hi", got.Config.Title)
	assert.Equal(t, "", got.Config.ImageURL)
	assert.Equal(t, "", got.Config.Footer)
	assert.Equal(t, model.TemplateStyles{
		TitleColor:      "#000000",
		ContentColor:    "#333333",
		BackgroundColor: "#ffffff",
		FontSize:        "16px",
	}, got.Config.Styles)
}

func TestCreate_KeepsProvidedStyles(t *testing.T) {
	svc := newTemplateService(t)

	req := promo()
	req.Config.Styles = model.TemplateStyles{TitleColor: "#ff0000", FontSize: "  "}
	created, err := svc.Create(context.Background(), "owner", req)
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", created.Config.Styles.TitleColor)
	assert.Equal(t, "16px", created.Config.Styles.FontSize)
}

func TestCreate_ReportsEveryMissingField(t *testing.T) {
	svc := newTemplateService(t)

	_, err := svc.Create(context.Background(), "owner", model.TemplateRequest{Name: "  "})
	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Validation failed", ve.Message)
	assert.Len(t, ve.Fields, 3)
	assert.Contains(t, ve.Fields, "name")
	assert.Contains(t, ve.Fields, "title")
	assert.Contains(t, ve.Fields, "content")
}

func TestCreate_AcceptsFunctionalColors(t *testing.T) {
	svc := newTemplateService(t)
	ctx := context.Background()

	req := promo()
	req.Config.Styles = model.TemplateStyles{TitleColor: "rgb(255, 0, 0)", ContentColor: "hsla(0, 0%, 20%, 0.9)", FontSize: "1.2em"}
	created, err := svc.Create(ctx, "owner", req)
	require.NoError(t, err)

	html, _, err := svc.Render(ctx, "owner", created.ID)
	require.NoError(t, err)
	assert.Contains(t, html, "color: rgb(255, 0, 0);")
	assert.Contains(t, html, "font-size: 1.2em;")
	assert.NotContains(t, html, "ZgotmplZ")
}

func TestCreate_RejectsUnsafeStyles(t *testing.T) {
	svc := newTemplateService(t)

	req := promo()
	req.Config.Styles = model.TemplateStyles{
		TitleColor:      "red;background:url(x)",
		BackgroundColor: "expression(alert(1))",
		FontSize:        "12px;color:red",
	}
	_, err := svc.Create(context.Background(), "owner", req)
	require.ErrorIs(t, err, apperr.ErrValidation)

	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Fields, 3)
	assert.Contains(t, ve.Fields, "styles.titleColor")
	assert.Contains(t, ve.Fields, "styles.backgroundColor")
	assert.Contains(t, ve.Fields, "styles.fontSize")
}

func TestList_EmptyIsNotNil(t *testing.T) {
	svc := newTemplateService(t)

	list, err := svc.List(context.Background(), "owner")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestOwnership(t *testing.T) {
	svc := newTemplateService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", promo())
	require.NoError(t, err)

	_, err = svc.Get(ctx, "bob", created.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Update(ctx, "bob", created.ID, promo())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "bob", created.ID), apperr.ErrNotFound)

	_, _, err = svc.Render(ctx, "bob", created.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	bobs, err := svc.List(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, bobs)

	_, err = svc.Get(ctx, "alice", created.ID)
	assert.NoError(t, err)
}

func TestGet_MalformedAndMissingIDsLookAlike(t *testing.T) {
	svc := newTemplateService(t)
	ctx := context.Background()

	_, malformed := svc.Get(ctx, "owner", "not-a-uuid")
	_, missing := svc.Get(ctx, "owner", uuid.NewString())

	require.ErrorIs(t, malformed, apperr.ErrNotFound)
	require.ErrorIs(t, missing, apperr.ErrNotFound)
	assert.Equal(t, apperr.Message(malformed), apperr.Message(missing))
}

func TestUpdate_FullReplace(t *testing.T) {
	svc := newTemplateService(t)
	ctx := context.Background()

	req := promo()
	req.Config.Footer = "bye"
	created, err := svc.Create(ctx, "owner", req)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "owner", created.ID, model.TemplateRequest{
		Name:   "Renamed",
		Config: &model.TemplateConfig{Title: "New", Content: "<p>new</p>"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "New", updated.Config.Title)
	assert.Equal(t, "", updated.Config.Footer)
	assert.Equal(t, "#ffffff", updated.Config.Styles.BackgroundColor)

	_, err = svc.Update(ctx, "owner", created.ID, model.TemplateRequest{Name: "x"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDelete_Twice(t *testing.T) {
	svc := newTemplateService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner", promo())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "owner", created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "owner", created.ID), apperr.ErrNotFound)
}

func TestRender(t *testing.T) {
	svc := newTemplateService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner", promo())
	require.NoError(t, err)

	html, filename, err := svc.Render(ctx, "owner", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "template-"+created.ID+".html", filename)
	assert.Contains(t, html, "<h1>Hi</h1>")
	assert.Contains(t, html, "<p>hello</p>")
	assert.NotContains(t, html, "<img")

	req := promo()
	req.Config.ImageURL = "/uploads/a.jpg"
	withImage, err := svc.Create(ctx, "owner", req)
	require.NoError(t, err)

	html, _, err = svc.Render(ctx, "owner", withImage.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(html, "<img"))
	assert.Contains(t, html, "/uploads/a.jpg")
}

func TestLayout(t *testing.T) {
	svc := newTemplateService(t)

	src, err := svc.Layout(context.Background(), "")
	require.NoError(t, err)
	assert.Contains(t, src, "<h1>{{.Title}}</h1>")

	_, err = svc.Layout(context.Background(), "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
