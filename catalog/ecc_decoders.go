package catalog

// This file implements the per-vendor ECC bitflip decoders named in
// spec.md section 4.3 "Built-in vendor specifics", each grounded on the
// corresponding vendor-*.c file in
// _examples/original_source/flash/nand/spi-nand/. A decoder's job is to
// turn a raw status-register read (and, for the extended forms, one or
// more vendor feature-register reads) into an EccStatus.

// StatusReader reads the STATUS feature register (address 0xC0).
type StatusReader func() (byte, error)

// FeatureReader reads an arbitrary vendor feature address.
type FeatureReader func(addr byte) (byte, error)

// GenericBitDecoder implements the 1-bit-per-step decoder of spec.md
// section 4.4: STATUS bits [4:5], 0 -> Ok, 1 -> Corrected(strength), else
// Uncorrectable. Used by Micron M68A/M69A/M60A and as the GD5F 1-bit/step
// variant.
func GenericBitDecoder(strength int32) func(StatusReader, uint32) (EccStatus, error) {
	return func(read StatusReader, steps uint32) (EccStatus, error) {
		sr, err := read()
		if err != nil {
			return EccStatus{}, err
		}
		bits := (sr >> 4) & 0x3
		st := EccStatus{StepBitflips: make([]int32, steps)}
		switch bits {
		case 0:
			st.Result = EccOk
		case 1:
			st.Result = EccCorrected
			for i := range st.StepBitflips {
				st.StepBitflips[i] = strength
			}
		default:
			st.Result = EccUncorrectable
			for i := range st.StepBitflips {
				st.StepBitflips[i] = -1
			}
		}
		return st, nil
	}
}

// MicronExtendedDecoder implements the Micron M78A/M79A/M70A 8-bit/step
// decoder: STATUS bits [4:6] map 0->0, 1->3, 3->6, 5->8, else uncorrectable
// (spec.md section 4.3).
func MicronExtendedDecoder(read StatusReader, steps uint32) (EccStatus, error) {
	sr, err := read()
	if err != nil {
		return EccStatus{}, err
	}
	bits := (sr >> 4) & 0x7
	st := EccStatus{StepBitflips: make([]int32, steps)}
	var n int32
	switch bits {
	case 0:
		n = 0
	case 1:
		n = 3
	case 3:
		n = 6
	case 5:
		n = 8
	default:
		st.Result = EccUncorrectable
		for i := range st.StepBitflips {
			st.StepBitflips[i] = -1
		}
		return st, nil
	}
	st.Result = EccOk
	if n > 0 {
		st.Result = EccCorrected
	}
	for i := range st.StepBitflips {
		st.StepBitflips[i] = n
	}
	return st, nil
}

// MacronixDecoder reads the per-operation corrected-bit count via opcode
// 0x7C (1 dummy byte): value <= strength is Corrected(value), else
// Uncorrectable (spec.md section 4.3).
func MacronixDecoder(readBitCount func() (byte, error), strength int32, steps uint32) (EccStatus, error) {
	n, err := readBitCount()
	if err != nil {
		return EccStatus{}, err
	}
	st := EccStatus{StepBitflips: make([]int32, steps)}
	if int32(n) <= strength {
		if n == 0 {
			st.Result = EccOk
		} else {
			st.Result = EccCorrected
		}
		for i := range st.StepBitflips {
			st.StepBitflips[i] = int32(n)
		}
	} else {
		st.Result = EccUncorrectable
		for i := range st.StepBitflips {
			st.StepBitflips[i] = -1
		}
	}
	return st, nil
}

// GigaDeviceSR3BitDecoder implements the GD5Fxxx SR 3-bit ECC status
// variant (bits [4:6] of STATUS), 0 meaning no bitflips and the max
// encodable value meaning uncorrectable.
func GigaDeviceSR3BitDecoder(strength int32) func(StatusReader, uint32) (EccStatus, error) {
	return func(read StatusReader, steps uint32) (EccStatus, error) {
		sr, err := read()
		if err != nil {
			return EccStatus{}, err
		}
		bits := int32((sr >> 4) & 0x7)
		st := EccStatus{StepBitflips: make([]int32, steps)}
		if bits == 0x7 {
			st.Result = EccUncorrectable
			for i := range st.StepBitflips {
				st.StepBitflips[i] = -1
			}
			return st, nil
		}
		if bits > strength {
			bits = strength
		}
		if bits == 0 {
			st.Result = EccOk
		} else {
			st.Result = EccCorrected
		}
		for i := range st.StepBitflips {
			st.StepBitflips[i] = bits
		}
		return st, nil
	}
}

// GigaDeviceSR2Decoder implements the GD5Fxxx SR2 2-bit variant with
// base-bits from feature address 0xF0: base=1 for 4-bit parts, base=4 for
// 8-bit parts; sr==2 is always uncorrectable; sr==3 means "max bitflips"
// (spec.md section 4.3).
func GigaDeviceSR2Decoder(base8Bit bool) func(StatusReader, FeatureReader, uint32) (EccStatus, error) {
	base := int32(1)
	if base8Bit {
		base = 4
	}
	return func(readSR StatusReader, readF0 FeatureReader, steps uint32) (EccStatus, error) {
		sr, err := readSR()
		if err != nil {
			return EccStatus{}, err
		}
		f0, err := readF0(0xF0)
		if err != nil {
			return EccStatus{}, err
		}
		bits := (sr >> 4) & 0x3
		st := EccStatus{StepBitflips: make([]int32, steps)}
		switch bits {
		case 2:
			st.Result = EccUncorrectable
			for i := range st.StepBitflips {
				st.StepBitflips[i] = -1
			}
		case 3:
			st.Result = EccCorrected
			for i := range st.StepBitflips {
				st.StepBitflips[i] = base * 2
			}
		default:
			n := base * int32(bits) + int32(f0&0xF)
			if n == 0 {
				st.Result = EccOk
			} else {
				st.Result = EccCorrected
			}
			for i := range st.StepBitflips {
				st.StepBitflips[i] = n
			}
		}
		return st, nil
	}
}

// WinbondDecoder implements the Winbond W25Nxx 1-bit or extended
// 4-bit/8-bit decoders, selected by extended=true/false.
func WinbondDecoder(extended bool, strength int32) func(StatusReader, uint32) (EccStatus, error) {
	if !extended {
		return GenericBitDecoder(strength)
	}
	return func(read StatusReader, steps uint32) (EccStatus, error) {
		sr, err := read()
		if err != nil {
			return EccStatus{}, err
		}
		bits := int32((sr >> 4) & 0xF)
		st := EccStatus{StepBitflips: make([]int32, steps)}
		if bits > strength {
			st.Result = EccUncorrectable
			for i := range st.StepBitflips {
				st.StepBitflips[i] = -1
			}
			return st, nil
		}
		if bits == 0 {
			st.Result = EccOk
		} else {
			st.Result = EccCorrected
		}
		for i := range st.StepBitflips {
			st.StepBitflips[i] = bits
		}
		return st, nil
	}
}

// ExtendedBfrDecoder implements the generic extended 3-bit/4-bit BFR
// (bitflip-report) decoder: reads 2 or 4 vendor feature addresses and
// extracts one nibble (or 3-bit field) per ECC step; values <= strength
// are bitflip counts, greater means uncorrectable (spec.md section 4.4).
func ExtendedBfrDecoder(addrs []byte, nibbleWidth uint, strength int32) func(FeatureReader, uint32) (EccStatus, error) {
	return func(readF FeatureReader, steps uint32) (EccStatus, error) {
		st := EccStatus{StepBitflips: make([]int32, steps), Result: EccOk}
		perByte := 8 / nibbleWidth
		mask := int32((1 << nibbleWidth) - 1)
		for step := uint32(0); step < steps; step++ {
			byteIdx := step / uint32(perByte)
			if int(byteIdx) >= len(addrs) {
				break
			}
			v, err := readF(addrs[byteIdx])
			if err != nil {
				return EccStatus{}, err
			}
			shift := (step % uint32(perByte)) * uint32(nibbleWidth)
			n := (int32(v) >> shift) & mask
			if n > strength {
				st.StepBitflips[step] = -1
				st.Result = EccUncorrectable
			} else {
				st.StepBitflips[step] = n
				if n > 0 && st.Result == EccOk {
					st.Result = EccCorrected
				}
			}
		}
		return st, nil
	}
}
