package formsubmit_test

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	formsubmit "github.com/goliatone/go-formsubmit"
	"github.com/goliatone/go-formsubmit/pkg/validation"
)

func TestValidate_Facade(t *testing.T) {
	result := formsubmit.Validate(formsubmit.Input{FieldName: "Ada", Email: "ada@example.com", Age: "36abc"})
	if !result.Valid() {
		t.Fatalf("expected leading digits to be accepted, got %+v", result.Issues)
	}
	if result.Record.Age != 36 {
		t.Fatalf("expected age 36, got %d", result.Record.Age)
	}
}

func TestRenderHTML_AfterSuccess(t *testing.T) {
	var got formsubmit.Record
	ctrl := formsubmit.NewController(func(_ context.Context, record formsubmit.Record) error {
		got = record
		return nil
	})

	in := formsubmit.Input{FieldName: "Ada", Email: "ada@example.com", Age: "36"}
	if err := ctrl.Submit(context.Background(), in); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got.FieldName != "Ada" {
		t.Fatalf("submit func not called with record, got %+v", got)
	}

	body, err := formsubmit.RenderHTML(context.Background(), ctrl)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(body), "Form submitted successfully") {
		t.Fatalf("expected success message in page:\n%s", body)
	}
	if !strings.Contains(string(body), `name="`+validation.FieldEmail+`"`) {
		t.Fatalf("expected email input in page")
	}
}

func TestEmbeddedFS(t *testing.T) {
	if _, err := fs.ReadFile(formsubmit.EmbeddedTemplates(), "page.tpl"); err != nil {
		t.Fatalf("expected page template: %v", err)
	}
	if _, err := fs.ReadFile(formsubmit.AssetsFS(), "formsubmit.css"); err != nil {
		t.Fatalf("expected stylesheet: %v", err)
	}
}
