package types

type PaymentProvider string

const (
	PaymentProviderDFX PaymentProvider = "dfx"
)
