package entity

// Customer cliente opcional da venda. TaxID pode ser CPF (11 dígitos) ou CNPJ (14).
// Um CPF informado manualmente na requisição tem prioridade sobre o armazenado aqui.
type Customer struct {
	ID           string
	Name         string
	TaxID        string
	StateTaxID   string
	StateTaxInd  string // indicador de IE do destinatário (1, 2 ou 9)
	Email        string
	Address      *Address
}

// Address endereço estruturado. Registros antigos foram gravados com chaves em
// inglês; os novos usam as chaves fiscais em português. Ambas as convenções são
// aceitas na decodificação e normalizadas antes de montar o documento.
type Address struct {
	// Convenção fiscal (preferida)
	Logradouro      string `json:"logradouro,omitempty"`
	Numero          string `json:"numero,omitempty"`
	Bairro          string `json:"bairro,omitempty"`
	Municipio       string `json:"municipio,omitempty"`
	CodigoMunicipio string `json:"codigo_municipio,omitempty"`
	UF              string `json:"uf,omitempty"`
	CEP             string `json:"cep,omitempty"`

	// Convenção legada (inglês)
	Street       string `json:"street,omitempty"`
	Number       string `json:"number,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	CityCode     string `json:"city_code,omitempty"`
	State        string `json:"state,omitempty"`
	ZipCode      string `json:"zip_code,omitempty"`
}

// coalesce devolve o primeiro valor não vazio.
func coalesce(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// Normalized devolve o endereço só com as chaves fiscais preenchidas,
// resolvendo a convenção legada quando a fiscal estiver vazia.
func (a *Address) Normalized() Address {
	if a == nil {
		return Address{}
	}
	return Address{
		Logradouro:      coalesce(a.Logradouro, a.Street),
		Numero:          coalesce(a.Numero, a.Number),
		Bairro:          coalesce(a.Bairro, a.Neighborhood),
		Municipio:       coalesce(a.Municipio, a.City),
		CodigoMunicipio: coalesce(a.CodigoMunicipio, a.CityCode),
		UF:              coalesce(a.UF, a.State),
		CEP:             coalesce(a.CEP, a.ZipCode),
	}
}
