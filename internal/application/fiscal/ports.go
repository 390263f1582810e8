package fiscal

import "context"

// ArchiveStore porta de saída para o object storage onde os PDFs das notas
// autorizadas são arquivados. Upload devolve a URL pública do objeto.
type ArchiveStore interface {
	Upload(ctx context.Context, path string, content []byte, contentType string) (string, error)
}
