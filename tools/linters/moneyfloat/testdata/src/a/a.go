package a

import "decimal"

type gauge struct{}

func (gauge) Float64() float64 { return 0 }

func bad() {
	_ = decimal.NewFromFloat(12.34) // want "decimal.NewFromFloat loses precision; parse amounts from strings"
}

func badFloat32() {
	_ = decimal.NewFromFloat32(1.5) // want "decimal.NewFromFloat32 loses precision; parse amounts from strings"
}

func badInexact() {
	amount := decimal.RequireFromString("600.00")
	_ = amount.InexactFloat64() // want "InexactFloat64 loses precision; keep amounts as decimals"
}

func good() {
	amount := decimal.RequireFromString("12.34")
	_ = amount.String()
}

func unrelatedFloat64() {
	_ = gauge{}.Float64()
}

func nolintGeneral() {
	//nolint
	_ = decimal.NewFromFloat(1)
}

func nolintSpecific() {
	_ = decimal.NewFromFloat(1) //nolint:moneyfloat
}

func nolintOtherLinter() {
	_ = decimal.NewFromFloat(1) //nolint:otherlinter // want "decimal.NewFromFloat loses precision; parse amounts from strings"
}
