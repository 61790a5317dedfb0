package constants

// Names of the flat fields exchanged with the review UI.
const (
	FieldInvoiceNo             = "INVOICE_NO"
	FieldInvoiceDate           = "INVOICE_DATE"
	FieldSupplierName          = "SUPPLIER_NAME"
	FieldSupplierAddress       = "SUPPLIER_ADDRESS"
	FieldSupplierAddressStreet = "SUPPLIER_ADDRESS_STREET"
	FieldSupplierAddressCity   = "SUPPLIER_ADDRESS_CITY"
	FieldRecipientName         = "RECIPIENT_NAME"
	FieldRecipientAddress      = "RECIPIENT_ADDRESS"
	FieldItems                 = "ITEMS"
	FieldTotalNet              = "TOTAL_NET"
	FieldTotalGross            = "TOTAL_GROSS"
	FieldVATAmount             = "VAT_AMOUNT"
	FieldTaxID                 = "TAX_ID"
	FieldIBAN                  = "IBAN"
	FieldBIC                   = "BIC"
)

// FieldOrder is the order in which fields are presented.
var FieldOrder = []string{
	FieldInvoiceNo,
	FieldInvoiceDate,
	FieldSupplierName,
	FieldSupplierAddress,
	FieldSupplierAddressStreet,
	FieldSupplierAddressCity,
	FieldRecipientName,
	FieldRecipientAddress,
	FieldItems,
	FieldTotalNet,
	FieldTotalGross,
	FieldVATAmount,
	FieldTaxID,
	FieldIBAN,
	FieldBIC,
}

// DefaultCurrency is assumed for every extracted amount.
const DefaultCurrency = "EUR"

// ExtractorSource tags predictions with the heuristics revision.
const ExtractorSource = "nlp-extract-v2"
