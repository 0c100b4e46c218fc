package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/RyanLatimer/Corundum/business/web/errs"
)

// client is used for every call to the node. Mining can take a while at
// higher difficulties.
var client = http.Client{
	Timeout: 5 * time.Minute,
}

// get calls the node and decodes the response into v.
func get(path string, v any) error {
	req, err := http.NewRequest(http.MethodGet, url+path, nil)
	if err != nil {
		return err
	}

	return do(req, v)
}

// post sends the body to the node and decodes the response into v.
func post(path string, body any, v any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequest(http.MethodPost, url+path, r)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return do(req, v)
}

func do(req *http.Request, v any) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var er errs.Response
		if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
			return fmt.Errorf("node responded %s", resp.Status)
		}

		if len(er.Fields) > 0 {
			return fmt.Errorf("node responded %s: %s: %v", resp.Status, er.Error, er.Fields)
		}
		return fmt.Errorf("node responded %s: %s", resp.Status, er.Error)
	}

	if v == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(v)
}
