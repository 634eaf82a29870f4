package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MXmingxuan/blockchain-lab/foundation/validate"
)

// Decode reads the body of an HTTP request looking for a JSON document. The
// body is decoded into the provided value. If the provided value is a
// struct, it is checked against the validate tags on its fields.
func Decode(r *http.Request, val any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(val); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	if err := validate.Check(val); err != nil {
		return err
	}

	return nil
}
