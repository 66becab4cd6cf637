// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package builder

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"reflect"
	"strings"
	"testing"

	"sitesmith/internal/ai"
	"sitesmith/internal/site"
)

// fakeBackend is a scripted Backend.
type fakeBackend struct {
	structured  string
	structErr   error
	chatReply   string
	chatErr     error
	image       []byte
	imageType   string
	imageErr    error
	moderation  *ai.ModerationResult
	modErr      error
	lastUser    string
	lastSchema  *ai.Schema
	structCalls int
}

func (f *fakeBackend) GenerateStructured(ctx context.Context, systemPrompt, userPrompt string, schema *ai.Schema) (string, error) {
	f.structCalls++
	f.lastUser = userPrompt
	f.lastSchema = schema
	return f.structured, f.structErr
}

func (f *fakeBackend) Chat(ctx context.Context, systemPrompt string, history []ai.Message, message string) (string, error) {
	return f.chatReply, f.chatErr
}

func (f *fakeBackend) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	return f.image, f.imageType, f.imageErr
}

func (f *fakeBackend) CheckPrompt(ctx context.Context, prompt string) (*ai.ModerationResult, error) {
	if f.moderation == nil && f.modErr == nil {
		return &ai.ModerationResult{Safe: true}, nil
	}
	return f.moderation, f.modErr
}

type fakeStore struct {
	key  string
	err  error
	data []byte
}

func (s *fakeStore) PutImage(ctx context.Context, key, contentType string, data []byte) (string, error) {
	s.key = key
	s.data = data
	if s.err != nil {
		return "", s.err
	}
	return "https://cdn.example.com/" + key, nil
}

const validSite = `{"name":"Bean There","description":"Coffee shop",
"theme":{"primaryColor":"#6b4f3a","secondaryColor":"#1c1917","fontFamily":"Lora","mode":"light"},
"sections":[{"id":"hero","type":"HERO","title":"Great coffee"},{"id":"about","type":"ABOUT","title":"Our story"}]}`

func currentSite(t *testing.T) *site.Website {
	t.Helper()
	w, err := site.Parse([]byte(validSite))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return w
}

// ---------- Generate ----------

func TestGenerateSuccess(t *testing.T) {
	fb := &fakeBackend{structured: validSite}
	c := New(fb)

	w, err := c.Generate(context.Background(), "a coffee shop")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if w.Name != "Bean There" || len(w.Sections) != 2 {
		t.Errorf("got %+v", w)
	}
	if !strings.Contains(fb.lastUser, "a coffee shop") {
		t.Errorf("prompt not forwarded: %q", fb.lastUser)
	}
	if fb.lastSchema == nil || len(fb.lastSchema.Required) != 4 {
		t.Errorf("schema not sent: %+v", fb.lastSchema)
	}
}

func TestGenerateFailures(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
		prompt  string
	}{
		{"backend error", &fakeBackend{structErr: errors.New("503")}, "cafe"},
		{"not json", &fakeBackend{structured: "Sure! Here is your site."}, "cafe"},
		{"missing theme", &fakeBackend{structured: `{"name":"a","description":"b","sections":[]}`}, "cafe"},
		{"section without title", &fakeBackend{structured: `{"name":"a","description":"b","theme":{"primaryColor":"#000","secondaryColor":"#fff","fontFamily":"x","mode":"dark"},"sections":[{"id":"h","type":"HERO"}]}`}, "cafe"},
		{"empty prompt", &fakeBackend{structured: validSite}, "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := New(tt.backend).Generate(context.Background(), tt.prompt)
			if w != nil {
				t.Errorf("expected nil website, got %+v", w)
			}
			var gen *GenerationError
			if !errors.As(err, &gen) {
				t.Fatalf("err = %v, want *GenerationError", err)
			}
			if gen.Message != GenerationMessage {
				t.Errorf("Message = %q", gen.Message)
			}
		})
	}
}

func TestGenerateFlagged(t *testing.T) {
	fb := &fakeBackend{
		structured: validSite,
		moderation: &ai.ModerationResult{Safe: false, Categories: []string{"violence"}},
	}
	_, err := New(fb).Generate(context.Background(), "something bad")

	var gen *GenerationError
	if !errors.As(err, &gen) || !errors.Is(err, ErrFlagged) {
		t.Fatalf("err = %v, want flagged GenerationError", err)
	}
	if !strings.Contains(gen.Message, "violence") {
		t.Errorf("Message = %q, want categories", gen.Message)
	}
	if fb.structCalls != 0 {
		t.Error("backend should not be called for a flagged prompt")
	}
}

func TestGenerateModerationOutageContinues(t *testing.T) {
	fb := &fakeBackend{structured: validSite, modErr: errors.New("moderation down")}
	if _, err := New(fb).Generate(context.Background(), "cafe"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
}

// ---------- Edit ----------

func TestEditSuccessReturnsNewDescription(t *testing.T) {
	updated := strings.Replace(validSite, "Great coffee", "Better coffee", 1)
	fb := &fakeBackend{structured: updated}
	cur := currentSite(t)
	before := cur.Clone()

	w, err := New(fb).Edit(context.Background(), cur, "update the hero title")
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if w.Sections[0].Title != "Better coffee" {
		t.Errorf("title = %q", w.Sections[0].Title)
	}
	if !reflect.DeepEqual(cur, before) {
		t.Error("current description was modified")
	}
	if !strings.Contains(fb.lastUser, `"update the hero title"`) || !strings.Contains(fb.lastUser, `"id":"about"`) {
		t.Errorf("edit prompt lacks instruction or current JSON:\n%s", fb.lastUser)
	}
}

func TestEditFailureCarriesPrior(t *testing.T) {
	tests := []struct {
		name string
		fb   *fakeBackend
	}{
		{"backend error", &fakeBackend{structErr: errors.New("timeout")}},
		{"missing sections", &fakeBackend{structured: `{"name":"a","description":"b","theme":{"primaryColor":"#000","secondaryColor":"#fff","fontFamily":"x","mode":"dark"}}`}},
		{"section without id", &fakeBackend{structured: `{"name":"a","description":"b","theme":{"primaryColor":"#000","secondaryColor":"#fff","fontFamily":"x","mode":"dark"},"sections":[{"type":"HERO","title":"t"}]}`}},
		{"truncated", &fakeBackend{structured: `{"name":"a",`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := currentSite(t)
			w, err := New(tt.fb).Edit(context.Background(), cur, "make it blue")
			if w != nil {
				t.Errorf("expected nil website, got %+v", w)
			}
			var edit *EditError
			if !errors.As(err, &edit) {
				t.Fatalf("err = %v, want *EditError", err)
			}
			if !reflect.DeepEqual(edit.Prior, cur) {
				t.Errorf("Prior = %+v, want current description", edit.Prior)
			}
			if edit.Prior == cur {
				t.Error("Prior should be a copy, not the caller's pointer")
			}
		})
	}
}

func TestEditNilCurrent(t *testing.T) {
	_, err := New(&fakeBackend{}).Edit(context.Background(), nil, "add pricing")
	var edit *EditError
	if !errors.As(err, &edit) || edit.Prior != nil {
		t.Errorf("err = %v", err)
	}
}

// ---------- Chat ----------

func TestChat(t *testing.T) {
	reply, err := New(&fakeBackend{chatReply: "  Use more whitespace.  "}).Chat(context.Background(), nil, "tips?")
	if err != nil || reply != "Use more whitespace." {
		t.Errorf("Chat = %q, %v", reply, err)
	}
}

func TestChatFailure(t *testing.T) {
	for _, fb := range []*fakeBackend{{chatErr: errors.New("429")}, {chatReply: "   "}} {
		_, err := New(fb).Chat(context.Background(), nil, "tips?")
		var chat *ChatError
		if !errors.As(err, &chat) {
			t.Fatalf("err = %v, want *ChatError", err)
		}
		if UserMessage(err) != ChatApology {
			t.Errorf("UserMessage = %q", UserMessage(err))
		}
	}
}

// ---------- SectionImage ----------

func TestSectionImageDataURI(t *testing.T) {
	fb := &fakeBackend{image: []byte{1, 2, 3}, imageType: "image/png"}
	got := New(fb).SectionImage(context.Background(), "hero", "espresso")
	if got != "data:image/png;base64,AQID" {
		t.Errorf("got %q", got)
	}
}

func TestSectionImageUploads(t *testing.T) {
	fb := &fakeBackend{image: []byte{1, 2, 3}, imageType: "image/jpeg"}
	store := &fakeStore{}
	c := New(fb)
	c.UseImageStore(store)

	got := c.SectionImage(context.Background(), "hero", "espresso")
	if !strings.HasPrefix(got, "https://cdn.example.com/generated/") || !strings.HasSuffix(got, ".jpg") {
		t.Errorf("got %q", got)
	}
}

func TestSectionImageUploadFailureInlines(t *testing.T) {
	fb := &fakeBackend{image: []byte{1, 2, 3}, imageType: "image/png"}
	c := New(fb)
	c.UseImageStore(&fakeStore{err: errors.New("s3 down")})

	if got := c.SectionImage(context.Background(), "hero", "x"); !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Errorf("got %q", got)
	}
}

func TestSectionImageDownscalesWideImages(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2400, 1200))); err != nil {
		t.Fatal(err)
	}
	store := &fakeStore{}
	c := New(&fakeBackend{image: buf.Bytes(), imageType: "image/png"})
	c.UseImageStore(store)

	got := c.SectionImage(context.Background(), "hero", "espresso")
	if !strings.HasSuffix(got, ".jpg") {
		t.Errorf("url %q: want a downscaled JPEG", got)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(store.data))
	if err != nil {
		t.Fatalf("stored image: %v", err)
	}
	if cfg.Width != 1600 || cfg.Height != 800 {
		t.Errorf("stored size: got %dx%d, want 1600x800", cfg.Width, cfg.Height)
	}
}

func TestSectionImageFallback(t *testing.T) {
	c := New(&fakeBackend{imageErr: errors.New("no image model")})

	if got := c.SectionImage(context.Background(), "gallery", "x"); got != "https://picsum.photos/seed/gallery/1200/800" {
		t.Errorf("got %q", got)
	}

	a := c.SectionImage(context.Background(), "", "latte art")
	b := c.SectionImage(context.Background(), "", "latte art")
	if a != b || !strings.HasPrefix(a, "https://picsum.photos/seed/") {
		t.Errorf("placeholder for same prompt should be stable: %q vs %q", a, b)
	}
}

func TestPlaceholderImageEscapesSeed(t *testing.T) {
	if got := PlaceholderImage("../x?y"); got != "https://picsum.photos/seed/..%2Fx%3Fy/1200/800" {
		t.Errorf("got %q", got)
	}
}

// ---------- Schema ----------

func TestWebsiteSchema(t *testing.T) {
	s := WebsiteSchema()
	js := s.JSONSchema()

	if got := js["required"]; !reflect.DeepEqual(got, []string{"name", "description", "theme", "sections"}) {
		t.Errorf("top-level required = %v", got)
	}
	sections := js["properties"].(map[string]any)["sections"].(map[string]any)
	item := sections["items"].(map[string]any)
	if !reflect.DeepEqual(item["required"], []string{"id", "type", "title"}) {
		t.Errorf("section required = %v", item["required"])
	}
	typeEnum := item["properties"].(map[string]any)["type"].(map[string]any)["enum"].([]string)
	if len(typeEnum) != len(site.SectionTypes) || typeEnum[0] != "HERO" {
		t.Errorf("type enum = %v", typeEnum)
	}
	theme := js["properties"].(map[string]any)["theme"].(map[string]any)
	mode := theme["properties"].(map[string]any)["mode"].(map[string]any)
	if !reflect.DeepEqual(mode["enum"], []string{"light", "dark"}) {
		t.Errorf("mode enum = %v", mode["enum"])
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(&GenerationError{Message: GenerationMessage}); got != GenerationMessage {
		t.Errorf("got %q", got)
	}
	if got := UserMessage(&EditError{Message: EditMessage}); got != EditMessage {
		t.Errorf("got %q", got)
	}
	if got := UserMessage(errors.New("x")); got == "" {
		t.Error("expected generic message")
	}
}
