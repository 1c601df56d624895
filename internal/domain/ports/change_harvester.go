package ports

import (
	"context"
	"time"
)

// ChangeHarvester recorre los commits más nuevos que el checkpoint y arma
// el digest textual ordenado de commits y diffs.
type ChangeHarvester interface {
	// Harvest lista los commits del branch con timestamp >= since, del más
	// viejo al más nuevo. Si el rango está vacío devuelve models.NoChanges.
	Harvest(ctx context.Context, since time.Time) (string, error)
}
