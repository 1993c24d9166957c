package jpeg2000

// The 5/3 reversible discrete wavelet transform (ITU-T T.800 Annex F),
// implemented via the lifting scheme so forward/inverse round-trip exactly
// in integer arithmetic.

// forward1D performs a 1D forward 5/3 lifting transform in-place, packing
// low-pass coefficients followed by high-pass coefficients.
func forward1D(signal []int) {
	n := len(signal)
	if n < 2 {
		return
	}

	half := (n + 1) / 2
	low := make([]int, half)
	high := make([]int, n-half)

	for i := 0; i < half; i++ {
		low[i] = signal[2*i]
	}
	for i := 0; i < len(high); i++ {
		high[i] = signal[2*i+1]
	}

	for i := 0; i < len(high); i++ {
		left := low[i]
		right := left
		if i+1 < half {
			right = low[i+1]
		}
		high[i] -= (left + right) / 2
	}

	for i := 0; i < half; i++ {
		left := 0
		if i > 0 {
			left = high[i-1]
		} else if len(high) > 0 {
			left = high[0]
		}
		right := left
		if i < len(high) {
			right = high[i]
		}
		low[i] += (left + right + 2) / 4
	}

	copy(signal[:half], low)
	copy(signal[half:], high)
}

// inverse1D performs a 1D inverse 5/3 lifting transform in-place.
func inverse1D(signal []int) {
	n := len(signal)
	if n < 2 {
		return
	}

	half := (n + 1) / 2
	low := make([]int, half)
	high := make([]int, n-half)
	copy(low, signal[:half])
	copy(high, signal[half:])

	for i := 0; i < half; i++ {
		left := 0
		if i > 0 {
			left = high[i-1]
		} else if len(high) > 0 {
			left = high[0]
		}
		right := left
		if i < len(high) {
			right = high[i]
		}
		low[i] -= (left + right + 2) / 4
	}

	for i := 0; i < len(high); i++ {
		left := low[i]
		right := left
		if i+1 < half {
			right = low[i+1]
		}
		high[i] += (left + right) / 2
	}

	for i := 0; i < half; i++ {
		signal[2*i] = low[i]
	}
	for i := 0; i < len(high); i++ {
		signal[2*i+1] = high[i]
	}
}

func forwardLLRegion(data []int, stride, width, height int) {
	if width < 2 || height < 2 {
		return
	}
	row := make([]int, width)
	for y := 0; y < height; y++ {
		offset := y * stride
		copy(row, data[offset:offset+width])
		forward1D(row)
		copy(data[offset:offset+width], row)
	}
	col := make([]int, height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			col[y] = data[y*stride+x]
		}
		forward1D(col)
		for y := 0; y < height; y++ {
			data[y*stride+x] = col[y]
		}
	}
}

func inverseLLRegion(data []int, stride, width, height int) {
	if width < 2 || height < 2 {
		return
	}
	col := make([]int, height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			col[y] = data[y*stride+x]
		}
		inverse1D(col)
		for y := 0; y < height; y++ {
			data[y*stride+x] = col[y]
		}
	}
	row := make([]int, width)
	for y := 0; y < height; y++ {
		offset := y * stride
		copy(row, data[offset:offset+width])
		inverse1D(row)
		copy(data[offset:offset+width], row)
	}
}

// forwardMultiLevel performs multi-level 2D DWT decomposition, each level
// transforming the LL region left by the previous level.
func forwardMultiLevel(data []int, width, height, levels int) (llWidth, llHeight int) {
	llWidth, llHeight = width, height
	for level := 0; level < levels; level++ {
		if llWidth < 2 || llHeight < 2 {
			break
		}
		forwardLLRegion(data, width, llWidth, llHeight)
		llWidth = (llWidth + 1) / 2
		llHeight = (llHeight + 1) / 2
	}
	return llWidth, llHeight
}

// inverseMultiLevel performs multi-level 2D inverse DWT reconstruction,
// processing levels from smallest LL to largest.
func inverseMultiLevel(data []int, width, height, levels int) {
	dims := make([][2]int, levels+1)
	dims[0] = [2]int{width, height}
	for i := 1; i <= levels; i++ {
		dims[i] = [2]int{(dims[i-1][0] + 1) / 2, (dims[i-1][1] + 1) / 2}
	}
	for level := levels - 1; level >= 0; level-- {
		llWidth, llHeight := dims[level][0], dims[level][1]
		if llWidth < 2 || llHeight < 2 {
			continue
		}
		inverseLLRegion(data, width, llWidth, llHeight)
	}
}
