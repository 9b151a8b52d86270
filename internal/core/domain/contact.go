package domain

import (
	"fmt"
	"net/url"
	"strings"
)

const contactBaseURL = "https://wa.me/"

// componentEscaper turns url.QueryEscape output into encodeURIComponent
// output: spaces as %20 and the marks ! ' ( ) * left as is.
var componentEscaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// ContactMessage is the prefilled chat text, naming the car when one is given.
func ContactMessage(carName string) string {
	if carName == "" {
		return "Hi, I am interested in a car listed on Car Tec."
	}
	return fmt.Sprintf("Hi, I am interested in the %s listed on Car Tec.", carName)
}

// ContactLink builds the chat link for the dealership number.
func ContactLink(number, carName string) string {
	text := componentEscaper.Replace(url.QueryEscape(ContactMessage(carName)))
	return contactBaseURL + number + "?text=" + text
}
