package web

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/core"
	"github.com/Manjunath1607/Multi-Layer-Process-Log-Engine/internal/loader"
)

// multipartMemory is the part of a form kept in memory; the rest spills
// to temporary files.
const multipartMemory = 32 << 20

// formOverhead allows for multipart boundaries and the text fields.
const formOverhead = 1 << 20

// processForm holds the text fields of a process or summary request.
type processForm struct {
	Layer    string `form:"layer" validate:"required,max=64"`
	Format   string `form:"format" validate:"omitempty,oneof=csv xlsx xls xlsb"`
	Sheet    string `form:"sheet" validate:"max=255"`
	Long     string `form:"long" validate:"omitempty,boolish"`
	Variants string `form:"variants" validate:"omitempty,boolish"`
	Naming   string `form:"naming" validate:"omitempty,oneof=layer final"`
	Artifact string `form:"artifact" validate:"omitempty,oneof=case_log event_wide event_long"`
	Rows     string `form:"rows" validate:"omitempty,number"`
}

// upload is a file received in a multipart form.
type upload struct {
	Name string
	Data []byte
}

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterValidation("boolish", func(fl validator.FieldLevel) bool {
		_, err := strconv.ParseBool(fl.Field().String())
		return err == nil
	})

	// Use form names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("form")
	})

	return v
}

// readUpload parses the multipart form and reads the "file" part, bounded
// by the configured maximum file size.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	maxSize := s.service.MaxFileSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+formOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, &loader.SizeLimitError{Size: mbe.Limit + 1, Limit: maxSize}
		}
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, core.ErrNoFile
		}
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	defer file.Close()

	data, err := loader.ReadAll(file, maxSize)
	if err != nil {
		return nil, err
	}
	return &upload{Name: header.Filename, Data: data}, nil
}

// parseProcessForm validates the form fields and builds a pipeline
// request. Unset toggles fall back to the configured defaults.
func (s *Server) parseProcessForm(r *http.Request, up *upload) (core.Request, processForm, error) {
	form := processForm{
		Layer:    strings.TrimSpace(r.FormValue("layer")),
		Format:   strings.ToLower(strings.TrimPrefix(strings.TrimSpace(r.FormValue("format")), ".")),
		Sheet:    r.FormValue("sheet"),
		Long:     strings.TrimSpace(r.FormValue("long")),
		Variants: strings.TrimSpace(r.FormValue("variants")),
		Naming:   strings.ToLower(strings.TrimSpace(r.FormValue("naming"))),
		Artifact: strings.TrimSpace(r.FormValue("artifact")),
		Rows:     strings.TrimSpace(r.FormValue("rows")),
	}

	if err := s.validate.Struct(form); err != nil {
		return core.Request{}, form, validationError(err)
	}

	layer, err := core.ParseLayer(form.Layer)
	if err != nil {
		return core.Request{}, form, err
	}
	naming, _ := core.ParseNaming(form.Naming)

	req := core.Request{
		FileName: up.Name,
		Format:   loader.Format(form.Format),
		Sheet:    form.Sheet,
		Layer:    layer,
		Options: core.Options{
			LongFormat: boolOr(form.Long, s.cfg.Pipeline.DefaultLong),
			Variants:   boolOr(form.Variants, s.cfg.Pipeline.DefaultVariants),
			Naming:     naming,
		},
	}
	return req, form, nil
}

// validationError flattens validator errors into one "invalid request"
// error naming each failing field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid request: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid request: %s", strings.Join(msgs, "; "))
}

func boolOr(s string, def bool) bool {
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}
