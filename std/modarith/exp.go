package modarith

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/qsyn/qsyn/circuit"
)

// ExpWindowed computes acc = (acc * g^e) mod N in place, where e is the
// value of the exponent register. N must be odd and greater than 1, g
// coprime to N, and acc at least N.BitLen() cells wide holding a value
// below N.
//
// The exponent is consumed in windows of Config().ExpWindowBits bits. Each
// window multiplies out of place into a zero scratch register with the
// looked-up factor g^(v*2^k), erases acc with the inverse multiply by the
// inverse factor, and swaps the registers back.
func ExpWindowed(b *circuit.Builder, g, N *big.Int, exp, acc circuit.Register) error {
	if N == nil || N.Bit(0) == 0 || N.Cmp(big.NewInt(2)) < 0 {
		return errors.New("modulus must be odd and greater than 1")
	}
	if N.BitLen() > len(acc) {
		return fmt.Errorf("modulus of %d bits does not fit in %d cells", N.BitLen(), len(acc))
	}
	gg := new(big.Int).Mod(g, N)
	if new(big.Int).GCD(nil, nil, gg, N).Cmp(big.NewInt(1)) != 0 {
		return fmt.Errorf("base %s is not coprime to the modulus %s", g, N)
	}
	n := len(acc)
	we := b.Config().ExpWindowBits
	for k := 0; k < len(exp); k += we {
		win := exp[k:min(k+we, len(exp))]
		factors := make([]*big.Int, 1<<uint(len(win)))
		inverses := make([]*big.Int, len(factors))
		for v := range factors {
			e := new(big.Int).Lsh(new(big.Int).SetInt64(int64(v)), uint(k))
			factors[v] = new(big.Int).Exp(gg, e, N)
			inverses[v] = new(big.Int).ModInverse(factors[v], N)
		}

		s := b.Scope()
		z := s.Acquire(n)
		if err := MulAddWindowed(b, N, factors, win, acc, z); err != nil {
			s.Release()
			return err
		}
		if err := MulSubWindowed(b, N, inverses, win, z, acc); err != nil {
			s.Release()
			return err
		}
		for i := range acc {
			b.Swap(acc[i], z[i])
		}
		s.Release()
	}
	return nil
}
