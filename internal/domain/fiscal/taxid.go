// Package fiscal reúne regras puras de identificação fiscal brasileira
// usadas na montagem da NFC-e.
package fiscal

import "strings"

// OnlyDigits remove tudo que não for dígito (pontuação de CPF/CNPJ, espaços).
func OnlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// ResolveRecipientTaxID resolve o documento do destinatário: o CPF/CNPJ manual
// da requisição tem prioridade sobre o cadastrado no cliente. Devolve o
// documento normalizado e true apenas quando houver 11 ou 14 dígitos —
// qualquer outro comprimento emite a nota como consumidor final não identificado.
func ResolveRecipientTaxID(manual, stored string) (string, bool) {
	for _, raw := range []string{manual, stored} {
		doc := OnlyDigits(raw)
		if doc == "" {
			continue
		}
		if len(doc) == 11 || len(doc) == 14 {
			return doc, true
		}
	}
	return "", false
}

// IsCNPJ indica se o documento normalizado é um CNPJ (14 dígitos).
func IsCNPJ(doc string) bool { return len(doc) == 14 }
