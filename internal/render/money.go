package render

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Money formats a USD amount as "USD 1,234.56".
func Money(usd float64) string {
	return printer.Sprintf("USD %.2f", usd)
}

// COP formats whole pesos as "COP 1,234,567".
func COP(pesos int64) string {
	return printer.Sprintf("COP %d", pesos)
}

var months = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// Date formats t as "19 de Octubre de 2026".
func Date(t time.Time) string {
	return fmt.Sprintf("%02d de %s de %d", t.Day(), months[t.Month()-1], t.Year())
}
