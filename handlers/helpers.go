package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"runtime/debug"
	"strings"

	"github.com/go-playground/form/v4"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/juho05/log"

	"github.com/restoka/closing/recordapi"
	"github.com/restoka/closing/services"
)

var (
	validate    *validator.Validate
	translator  ut.Translator
	formDecoder *form.Decoder
)

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic("register validator translations: " + err.Error())
	}

	formDecoder = form.NewDecoder()
	formDecoder.SetTagName("json")
}

// decodeBody reads a JSON or form-encoded request body into T.
func decodeBody[T any](r *http.Request) (T, error) {
	var obj T
	defer r.Body.Close()
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return obj, err
		}
		err := formDecoder.Decode(&obj, r.PostForm)
		return obj, err
	}
	err := json.NewDecoder(r.Body).Decode(&obj)
	return obj, err
}

type invalidField struct {
	Name    string `json:"name"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func findInvalidFields(obj any) []invalidField {
	err := validate.Struct(obj)
	if e, ok := err.(*validator.InvalidValidationError); ok {
		panic(e)
	}
	vErrs, ok := err.(validator.ValidationErrors)
	if ok && len(vErrs) > 0 {
		fields := make([]invalidField, len(vErrs))
		for i, e := range vErrs {
			fields[i] = invalidField{
				Name:    e.Field(),
				Rule:    e.Tag(),
				Message: e.Translate(translator),
			}
		}
		return fields
	}
	return nil
}

// decodeAndValidateBody decodes the body and answers a 422 with the field
// list when validation fails. The caller just returns on !ok.
func decodeAndValidateBody[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	body, err := decodeBody[T](r)
	if err != nil {
		badRequest(w)
		return body, false
	}
	if fields := findInvalidFields(body); fields != nil {
		invalidFields(w, fields)
		return body, false
	}
	return body, true
}

func invalidFields(w http.ResponseWriter, fields []invalidField) {
	type response struct {
		Fields []invalidField `json:"fields"`
	}
	respondError(w, ErrInvalidFields, http.StatusUnprocessableEntity, response{
		Fields: fields,
	})
}

func notFound(w http.ResponseWriter) {
	clientError(w, http.StatusNotFound)
}

func badRequest(w http.ResponseWriter) {
	clientError(w, http.StatusBadRequest)
}

func clientError(w http.ResponseWriter, status int) {
	http.Error(w, http.StatusText(status), status)
}

func serverError(w http.ResponseWriter, err error) {
	log.Errorf("%s\n%s", err.Error(), debug.Stack())
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	type response struct {
		Error bool `json:"error"`
		Body  any  `json:"body,omitempty"`
	}
	res := response{
		Error: false,
		Body:  data,
	}
	json.NewEncoder(w).Encode(res)
}

func respondError(w http.ResponseWriter, err error, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	type response struct {
		Error   bool   `json:"error"`
		ErrorID string `json:"errorID"`
		Body    any    `json:"body,omitempty"`
	}
	res := response{
		Error:   true,
		ErrorID: err.Error(),
		Body:    data,
	}
	json.NewEncoder(w).Encode(res)
}

// serviceError converts service and record API failures into the JSON
// error envelope. The local view state is never advanced on failure.
func serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		respondError(w, ErrInvalidCredentials, http.StatusUnauthorized, nil)
	case errors.Is(err, services.ErrInvalidPIN):
		respondError(w, ErrInvalidPIN, http.StatusForbidden, nil)
	case errors.Is(err, services.ErrStoreNotAllowed), errors.Is(err, services.ErrNoActiveStore):
		respondError(w, ErrForbidden, http.StatusForbidden, nil)
	case errors.Is(err, services.ErrRecordLocked):
		respondError(w, ErrRecordLocked, http.StatusConflict, nil)
	case errors.Is(err, services.ErrInvalidStatus):
		respondError(w, ErrInvalidFields, http.StatusUnprocessableEntity, nil)
	case errors.Is(err, recordapi.ErrNotFound):
		respondError(w, ErrNotFound, http.StatusNotFound, nil)
	case errors.Is(err, recordapi.ErrUnauthorized):
		respondError(w, ErrForbidden, http.StatusForbidden, nil)
	case errors.Is(err, recordapi.ErrUnavailable):
		log.Errorf("record service: %s", err)
		respondError(w, ErrServiceUnavailable, http.StatusBadGateway, nil)
	default:
		serverError(w, err)
	}
}
