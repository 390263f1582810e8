package nfce

import (
	"regexp"
	"strings"
)

// chaveDuplicadaRe é a assinatura documentada da rejeição por duplicidade: a
// chave de acesso embutida no texto do motivo. O comprimento canônico é 44
// dígitos, mas o gateway já devolveu mensagens com a chave encurtada, então a
// captura aceita qualquer sequência de dígitos entre os colchetes.
var chaveDuplicadaRe = regexp.MustCompile(`\[chNFe:([0-9]+)\]`)

// EhDuplicidade indica se o motivo de rejeição corresponde a uma duplicidade
// de submissão (nota com a mesma chave já processada pelo gateway).
func EhDuplicidade(motivo string) bool {
	return strings.Contains(motivo, "[chNFe:") ||
		strings.Contains(strings.ToLower(motivo), "duplicidade")
}

// ExtrairChaveDuplicada extrai a chave de acesso embutida no motivo. Devolve
// false quando o padrão não casa — nesse caso a recuperação é abandonada e a
// rejeição original permanece.
func ExtrairChaveDuplicada(motivo string) (string, bool) {
	m := chaveDuplicadaRe.FindStringSubmatch(motivo)
	if len(m) != 2 {
		return "", false
	}
	return m[1], true
}
