package nfce

import (
	"github.com/shopspring/decimal"
)

// ── Constantes fiscais do documento ───────────────────────────────────────────
//
// CFOP e regime tributário são fixos por decisão de negócio: o emitente opera
// como MEI no Simples Nacional vendendo a consumidor final. Isto NÃO é um motor
// tributário genérico; generalizar exige revisar cada constante abaixo.
const (
	// CFOPVendaConsumidor é forçado em todo item, ignorando o CFOP do cadastro.
	CFOPVendaConsumidor = "5102"
	// CSOSNIsencao ICMS do Simples Nacional sem permissão de crédito.
	CSOSNIsencao = "102"
	// CSTOutrasOperacoes PIS/COFINS com base de cálculo zerada.
	CSTOutrasOperacoes = "49"
	// NCMGenerico placeholder quando nem snapshot nem produto têm NCM.
	NCMGenerico = "00000000"
	// SemGTIN valor exigido pelo schema quando o item não tem código de barras.
	SemGTIN = "SEM GTIN"

	unidadePadrao = "UN"
)

// Códigos de meio de pagamento (tPag) do layout NFC-e.
const (
	TPagDinheiro = "01"
	TPagCredito  = "03"
	TPagDebito   = "04"
	TPagPix      = "17"
	TPagOutros   = "99"
)

// Indicadores de forma de pagamento (indPag).
const (
	IndPagAVista = 0
	IndPagAPrazo = 1
)

// ── Tipos numéricos do payload ────────────────────────────────────────────────

// Valor é um campo monetário do documento. Serializa sempre como número JSON
// com duas casas decimais — o gateway rejeita montantes entre aspas, então o
// tipo não oferece nenhuma construção a partir de string.
type Valor struct {
	d decimal.Decimal
}

// NovoValor arredonda para duas casas na construção; somas de Valores já
// arredondados não sofrem deriva de arredondamento.
func NovoValor(d decimal.Decimal) Valor {
	return Valor{d: d.Round(2)}
}

// Add soma dois valores já arredondados.
func (v Valor) Add(o Valor) Valor { return Valor{d: v.d.Add(o.d)} }

// Decimal expõe o valor subjacente (para asserções e comparações).
func (v Valor) Decimal() decimal.Decimal { return v.d }

// MarshalJSON emite o número sem aspas, sempre com duas casas.
func (v Valor) MarshalJSON() ([]byte, error) {
	return []byte(v.d.StringFixed(2)), nil
}

// Quantidade é a quantidade comercial do item; número JSON com quatro casas.
type Quantidade struct {
	d decimal.Decimal
}

// NovaQuantidade arredonda para quatro casas na construção.
func NovaQuantidade(d decimal.Decimal) Quantidade {
	return Quantidade{d: d.Round(4)}
}

// Decimal expõe o valor subjacente.
func (q Quantidade) Decimal() decimal.Decimal { return q.d }

// MarshalJSON emite o número sem aspas, sempre com quatro casas.
func (q Quantidade) MarshalJSON() ([]byte, error) {
	return []byte(q.d.StringFixed(4)), nil
}

// ── Estrutura do documento NFC-e (JSON do gateway) ────────────────────────────

// Documento é o corpo enviado em POST /nfce.
type Documento struct {
	Ambiente string `json:"ambiente"` // producao | homologacao
	InfNFe   InfNFe `json:"infNFe"`
}

// InfNFe núcleo do documento fiscal.
type InfNFe struct {
	Versao string        `json:"versao"`
	Ide    Ide           `json:"ide"`
	Emit   Emitente      `json:"emit"`
	Dest   *Destinatario `json:"dest,omitempty"`
	Det    []Det         `json:"det"`
	Total  Total         `json:"total"`
	Transp Transporte    `json:"transp"`
	Pag    Pag           `json:"pag"`
}

// Ide identificação da nota. CNF é o código de controle aleatório gerado a
// cada requisição; DhEmi é o instante de montagem do documento.
type Ide struct {
	CNF      string `json:"cNF"`
	NatOp    string `json:"natOp"`
	Mod      int    `json:"mod"` // 65 = NFC-e
	Serie    int    `json:"serie"`
	NNF      int64  `json:"nNF"`
	DhEmi    string `json:"dhEmi"`
	TpNF     int    `json:"tpNF"`     // 1 = saída
	TpAmb    int    `json:"tpAmb"`    // 1 = produção, 2 = homologação
	FinNFe   int    `json:"finNFe"`   // 1 = normal
	IndFinal int    `json:"indFinal"` // 1 = consumidor final
	IndPres  int    `json:"indPres"`  // 1 = operação presencial
}

// Emitente dados cadastrais da loja.
type Emitente struct {
	CNPJ      string       `json:"CNPJ"`
	XNome     string       `json:"xNome"`
	IE        string       `json:"IE"`
	CRT       int          `json:"CRT"` // 1 = Simples Nacional
	EnderEmit EnderecoNota `json:"enderEmit"`
}

// EnderecoNota endereço no formato do schema fiscal.
type EnderecoNota struct {
	XLgr    string `json:"xLgr"`
	Nro     string `json:"nro"`
	XBairro string `json:"xBairro,omitempty"`
	CMun    string `json:"cMun,omitempty"`
	XMun    string `json:"xMun,omitempty"`
	UF      string `json:"UF,omitempty"`
	CEP     string `json:"CEP,omitempty"`
}

// Destinatario bloco opcional do comprador identificado.
type Destinatario struct {
	CPF       string        `json:"CPF,omitempty"`
	CNPJ      string        `json:"CNPJ,omitempty"`
	XNome     string        `json:"xNome,omitempty"`
	Email     string        `json:"email,omitempty"`
	IndIEDest int           `json:"indIEDest"` // 9 = não contribuinte
	EnderDest *EnderecoNota `json:"enderDest,omitempty"`
}

// Det linha de item da nota.
type Det struct {
	NItem   int     `json:"nItem"`
	Prod    Produto `json:"prod"`
	Imposto Imposto `json:"imposto"`
}

// Produto dados comerciais e fiscais do item.
type Produto struct {
	CProd    string     `json:"cProd"`
	CEAN     string     `json:"cEAN"`
	XProd    string     `json:"xProd"`
	NCM      string     `json:"NCM"`
	CEST     string     `json:"CEST,omitempty"`
	CFOP     string     `json:"CFOP"`
	UCom     string     `json:"uCom"`
	QCom     Quantidade `json:"qCom"`
	VUnCom   Valor      `json:"vUnCom"`
	VProd    Valor      `json:"vProd"`
	CEANTrib string     `json:"cEANTrib"`
	UTrib    string     `json:"uTrib"`
	QTrib    Quantidade `json:"qTrib"`
	VUnTrib  Valor      `json:"vUnTrib"`
	IndTot   int        `json:"indTot"`
}

// Imposto grupo tributário do item (regime fixo, ver constantes).
type Imposto struct {
	ICMS   ICMS   `json:"ICMS"`
	PIS    PIS    `json:"PIS"`
	COFINS COFINS `json:"COFINS"`
}

// ICMS só o grupo ICMSSN102 é emitido (Simples Nacional).
type ICMS struct {
	ICMSSN102 *ICMSSN102 `json:"ICMSSN102,omitempty"`
}

// ICMSSN102 ICMS do Simples Nacional, CSOSN 102.
type ICMSSN102 struct {
	Orig  string `json:"orig"`
	CSOSN string `json:"CSOSN"`
}

// PIS com CST 49 e base zerada.
type PIS struct {
	PISOutr *PISOutr `json:"PISOutr,omitempty"`
}

// PISOutr grupo "outras operações" com valores zerados.
type PISOutr struct {
	CST  string `json:"CST"`
	VBC  Valor  `json:"vBC"`
	PPIS Valor  `json:"pPIS"`
	VPIS Valor  `json:"vPIS"`
}

// COFINS com CST 49 e base zerada.
type COFINS struct {
	COFINSOutr *COFINSOutr `json:"COFINSOutr,omitempty"`
}

// COFINSOutr grupo "outras operações" com valores zerados.
type COFINSOutr struct {
	CST     string `json:"CST"`
	VBC     Valor  `json:"vBC"`
	PCOFINS Valor  `json:"pCOFINS"`
	VCOFINS Valor  `json:"vCOFINS"`
}

// Total totais da nota. VProd e VNF devem ser numericamente idênticos quando
// todos os itens já estão arredondados a duas casas.
type Total struct {
	ICMSTot ICMSTot `json:"ICMSTot"`
}

// ICMSTot totais de ICMS e da nota.
type ICMSTot struct {
	VBC     Valor `json:"vBC"`
	VICMS   Valor `json:"vICMS"`
	VProd   Valor `json:"vProd"`
	VDesc   Valor `json:"vDesc"`
	VPIS    Valor `json:"vPIS"`
	VCOFINS Valor `json:"vCOFINS"`
	VOutro  Valor `json:"vOutro"`
	VNF     Valor `json:"vNF"`
}

// Transporte NFC-e presencial: sempre sem frete.
type Transporte struct {
	ModFrete int `json:"modFrete"` // 9 = sem ocorrência de transporte
}

// Pag grupo de pagamentos.
type Pag struct {
	DetPag []DetPag `json:"detPag"`
}

// DetPag detalhe de um pagamento.
type DetPag struct {
	IndPag int    `json:"indPag"`
	TPag   string `json:"tPag"`
	VPag   Valor  `json:"vPag"`
	XPag   string `json:"xPag,omitempty"`
	Card   *Card  `json:"card,omitempty"`
}

// Card declarado em pagamentos de cartão; terminal não integrado ao PDV.
type Card struct {
	TpIntegra int `json:"tpIntegra"` // 2 = não integrado
}
