package vdom

import (
	"fmt"
	"strconv"
	"strings"
)

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Attribute creates an arbitrary attribute.
func Attribute(name string, value any) Attr { return attr(name, value) }

// Key sets the reconciliation key. Keys are not host attributes.
func Key(key any) Attr { return attr("key", key) }

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// StyleAttr sets the style attribute.
func StyleAttr(style string) Attr { return attr("style", style) }

// TitleAttr sets the title attribute (named to avoid conflict with Title element).
func TitleAttr(title string) Attr { return attr("title", title) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attr { return attr("aria-label", label) }

// Link and form attributes

func Href(url string) Attr          { return attr("href", url) }
func Src(url string) Attr           { return attr("src", url) }
func Type(t string) Attr            { return attr("type", t) }
func Name(name string) Attr         { return attr("name", name) }
func Value(value any) Attr          { return attr("value", value) }
func Placeholder(text string) Attr  { return attr("placeholder", text) }
func Disabled(disabled bool) Attr   { return attr("disabled", disabled) }
func Checked(checked bool) Attr     { return attr("checked", checked) }
func Selected(selected bool) Attr   { return attr("selected", selected) }
func For(id string) Attr            { return attr("for", id) }
func Autofocus(autofocus bool) Attr { return attr("autofocus", autofocus) }

// attrValue converts an attribute value to its host string. Boolean
// attributes are present when true and omitted when false.
func attrValue(v any) (string, bool) {
	if b, ok := v.(bool); ok {
		if !b {
			return "", false
		}
		return "", true
	}
	return propToString(v), true
}

// propToString converts a prop value to a string.
func propToString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
