package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/zatekoja/srq20-api/internal/domain/entities"
)

// FieldError describes one rejected part of a request body.
type FieldError struct {
	Type  string        `json:"type"`
	Loc   []interface{} `json:"loc"`
	Msg   string        `json:"msg"`
	Input interface{}   `json:"input"`
}

// ValidationErrors is the 422 response body.
type ValidationErrors struct {
	Detail []FieldError `json:"detail"`
}

const (
	errMissing       = "missing"
	errIntType       = "int_type"
	errIntParsing    = "int_parsing"
	errIntFromFloat  = "int_from_float"
	errIntSize       = "int_parsing_size"
	errJSONInvalid   = "json_invalid"
	errNotAnObject   = "model_attributes_type"
	msgMissing       = "Field required"
	msgIntType       = "Input should be a valid integer"
	msgIntParsing    = "Input should be a valid integer, unable to parse string as an integer"
	msgIntFromFloat  = "Input should be a valid integer, got a number with a fractional part"
	msgIntSize       = "Unable to parse input string as an integer, exceeded maximum size"
	msgJSONInvalid   = "JSON decode error"
	msgNotAnObject   = "Input should be a valid dictionary or object to extract fields from"
	maxRequestBytes  = 1 << 20
	bodyLocationRoot = "body"
)

// decodeQuestionnaire reads a questionnaire body. Every field is required and
// coerced to an integer; all problems are collected before returning.
func decodeQuestionnaire(r io.Reader) (*entities.Questionnaire, []FieldError) {
	data, err := io.ReadAll(io.LimitReader(r, maxRequestBytes))
	if err != nil {
		return nil, []FieldError{{Type: errJSONInvalid, Loc: []interface{}{bodyLocationRoot, 0}, Msg: msgJSONInvalid, Input: map[string]interface{}{}}}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, []FieldError{{Type: errMissing, Loc: []interface{}{bodyLocationRoot}, Msg: msgMissing}}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var body interface{}
	if err := dec.Decode(&body); err != nil {
		return nil, []FieldError{jsonInvalid(err, dec.InputOffset())}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, []FieldError{jsonInvalid(errors.New("trailing data after JSON value"), dec.InputOffset())}
	}

	fields, ok := body.(map[string]interface{})
	if !ok {
		return nil, []FieldError{{Type: errNotAnObject, Loc: []interface{}{bodyLocationRoot}, Msg: msgNotAnObject, Input: body}}
	}

	var answers [entities.FeatureCount]int
	var problems []FieldError
	for i, name := range entities.FeatureNames {
		raw, present := fields[name]
		if !present {
			problems = append(problems, FieldError{Type: errMissing, Loc: []interface{}{bodyLocationRoot, name}, Msg: msgMissing, Input: fields})
			continue
		}
		v, fe := coerceInt(raw)
		if fe != nil {
			fe.Loc = []interface{}{bodyLocationRoot, name}
			fe.Input = raw
			problems = append(problems, *fe)
			continue
		}
		answers[i] = v
	}

	if len(problems) > 0 {
		return nil, problems
	}

	q := entities.QuestionnaireFromAnswers(answers)
	return &q, nil
}

func jsonInvalid(err error, offset int64) FieldError {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		offset = syntaxErr.Offset
	}
	return FieldError{
		Type:  errJSONInvalid,
		Loc:   []interface{}{bodyLocationRoot, offset},
		Msg:   msgJSONInvalid,
		Input: map[string]interface{}{},
	}
}

// coerceInt accepts integers, integral floats, booleans and numeric strings.
func coerceInt(raw interface{}) (int, *FieldError) {
	switch v := raw.(type) {
	case json.Number:
		return numberToInt(string(v), false)
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		return numberToInt(strings.TrimSpace(v), true)
	default:
		return 0, &FieldError{Type: errIntType, Msg: msgIntType}
	}
}

func numberToInt(s string, fromString bool) (int, *FieldError) {
	if n, err := strconv.ParseInt(s, 10, 0); err == nil {
		return int(n), nil
	} else if errors.Is(err, strconv.ErrRange) {
		return 0, &FieldError{Type: errIntSize, Msg: msgIntSize}
	}

	if fromString {
		// strings allow a zero fraction, nothing else
		if i := strings.IndexByte(s, '.'); i >= 0 && strings.Trim(s[i+1:], "0") == "" {
			return numberToInt(s[:i], true)
		}
		return 0, &FieldError{Type: errIntParsing, Msg: msgIntParsing}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &FieldError{Type: errIntType, Msg: msgIntType}
	}
	if f != math.Trunc(f) {
		return 0, &FieldError{Type: errIntFromFloat, Msg: msgIntFromFloat}
	}
	if f >= 1<<63 || f < -(1<<63) {
		return 0, &FieldError{Type: errIntSize, Msg: msgIntSize}
	}
	return int(f), nil
}
