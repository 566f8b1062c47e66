package decimal

type Decimal struct{ s string }

func NewFromFloat(f float64) Decimal { return Decimal{} }

func NewFromFloat32(f float32) Decimal { return Decimal{} }

func RequireFromString(s string) Decimal { return Decimal{s: s} }

func (d Decimal) InexactFloat64() float64 { return 0 }

func (d Decimal) String() string { return d.s }
