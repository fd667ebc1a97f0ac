package mwlib

import (
	"cgt.name/pkg/go-mwclient/params"
	"github.com/antonholmquist/jason"
	"github.com/pkg/errors"
)

// Getter is the read side of *mwclient.Client.
type Getter interface {
	Get(p params.Values) (*jason.Object, error)
}

// Query runs an action=query request, following API continuation until
// the result set is exhausted, and hands every reply to fn. The caller's
// params are not modified.
func Query(client Getter, p params.Values, fn func(resp *jason.Object) error) error {
	req := params.Values{}
	for k, v := range p {
		req[k] = v
	}
	req["action"] = "query"
	req["formatversion"] = "2"
	if _, ok := req["continue"]; !ok {
		req["continue"] = ""
	}
	for {
		resp, err := client.Get(req)
		if err != nil {
			return err
		}
		if err := fn(resp); err != nil {
			return err
		}
		cont, err := resp.GetObject("continue")
		if err != nil {
			// No continue object: the query is complete.
			return nil
		}
		for k, v := range cont.Map() {
			s, err := v.String()
			if err != nil {
				return errors.Wrapf(err, "continuation value %s", k)
			}
			req[k] = s
		}
	}
}
