package wikidata

import (
	"github.com/antonholmquist/jason"
)

func mustValue(raw string) *jason.Value {
	obj, err := jason.NewObjectFromBytes([]byte(`{"v":` + raw + `}`))
	if err != nil {
		panic(err)
	}
	value, err := obj.GetValue("v")
	if err != nil {
		panic(err)
	}
	return value
}

func quantityValue(amount string) *jason.Value {
	return mustValue(`{"amount":"` + amount + `","unit":"1"}`)
}

func stringValue(text string) *jason.Value {
	return mustValue(`"` + text + `"`)
}
