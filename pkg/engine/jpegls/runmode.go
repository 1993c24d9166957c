package jpegls

// decodeRun decodes a run-mode segment starting at *x on row y: a sequence
// of pixels equal to Ra, terminated either by end-of-line or by an
// "interruption sample" whose value differs from the run (ISO/IEC
// 14495-1 §A.4.2 / §A.7.1). *x is advanced past every pixel the run
// produces, including the interruption sample.
func (d *Decoder) decodeRun(Ra, Rb int, currLine []int, x *int, y, width int) error {
	for {
		b, err := d.br.ReadBit()
		if err != nil {
			return err
		}

		if b == 1 {
			j := d.context.J[d.context.RunIndex]
			runLength := 1 << uint(j)
			if remaining := width - *x; runLength > remaining {
				runLength = remaining
			}
			for i := 0; i < runLength; i++ {
				currLine[*x] = Ra
				*x++
			}
			if d.context.RunIndex < 31 {
				d.context.RunIndex++
			}
			if *x >= width {
				return nil
			}
			continue
		}

		// b == 0: run terminates within this line.
		j := d.context.J[d.context.RunIndex]
		var rBits uint32
		if j > 0 {
			var err error
			rBits, err = d.br.ReadBits(j)
			if err != nil {
				return err
			}
		}
		runLength := int(rBits)
		if remaining := width - *x; runLength > remaining {
			runLength = remaining
		}
		for i := 0; i < runLength; i++ {
			currLine[*x] = Ra
			*x++
		}
		if *x >= width {
			return nil
		}

		if d.context.RunIndex > 0 {
			d.context.RunIndex--
		}

		return d.decodeRunInterruption(Ra, Rb, currLine, x)
	}
}

// decodeRunInterruption decodes the single sample that terminated a run
// (the "interruption sample", ISO/IEC 14495-1 §A.7.1.2) and writes it at *x.
func (d *Decoder) decodeRunInterruption(Ra, Rb int, currLine []int, x *int) error {
	q := 365
	if Ra != Rb {
		q = 366
	}
	k := d.context.computeK(q)

	mapped, err := d.br.ReadGolomb(k)
	if err != nil {
		return err
	}

	var errVal int
	if mapped%2 == 0 {
		errVal = int(mapped / 2)
	} else {
		errVal = -int(mapped+1) / 2
	}
	d.context.updateStats(q, errVal)

	px := Ra
	sign := 1
	if Ra != Rb {
		px = Rb
		if Ra > Rb {
			sign = -1
		}
	}

	maxVal := d.context.MaxVal
	rangeVal := maxVal + 1
	ix := px + sign*errVal
	if ix < 0 {
		ix += rangeVal
	}
	if ix > maxVal {
		ix -= rangeVal
	}
	ix = clip(ix, 0, maxVal)

	currLine[*x] = ix
	*x++
	return nil
}
