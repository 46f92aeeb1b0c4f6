package backtest

import "github.com/CCAtAlvis/vfunds/pkg/vferrors"

func invalidErr(code, msg string) error {
	return vferrors.Invalid(code, msg)
}
