package entity

// Product campos fiscais relevantes do cadastro de produto.
type Product struct {
	ID          string
	Name        string
	Barcode     string
	NCM         string
	CEST        string
	CFOP        string
	Origin      string // código de origem da mercadoria (0 = nacional)
	Unit        string
	Description string
}
