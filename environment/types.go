package environment

import (
	"net/url"
	"reflect"
)

var (
	propertiesType = reflect.TypeOf((*Properties)(nil))
	uriPointerType = reflect.TypeOf((*url.URL)(nil))
)

func typeOfValue(v any) reflect.Type {
	return reflect.TypeOf(v)
}

// cloneURI copies the *url.URL prototype, the cloner operation §6 names
// for unique-meta property bindings.
func cloneURI(v any) any {
	u := v.(*url.URL)
	c := *u
	return &c
}
