package deflate64

import (
	"github.com/anthropic-go-student/deflate64/internal/bitio"
	"github.com/anthropic-go-student/deflate64/internal/huffman"
)

// decodeUncompressedBlock reads a stored block: byte-align, LEN/~LEN,
// then LEN raw bytes straight from input into the window. Grounded on
// decode_uncompressed_block in original_source/src/inflater_managed.rs.
func (f *Inflater) decodeUncompressedBlock(r *bitio.Reader, eob *bool) bool {
	for {
		switch f.state {
		case stateUncompressedAligning:
			r.SkipToByteBoundary()
			f.state = stateUncompressedByte1

		case stateUncompressedByte1, stateUncompressedByte2, stateUncompressedByte3, stateUncompressedByte4:
			idx := int(f.state - stateUncompressedByte1)
			b := r.GetBits(8)
			if b < 0 {
				return false
			}
			f.blockLengthBuffer[idx] = byte(b)
			if f.state == stateUncompressedByte4 {
				length := uint16(f.blockLengthBuffer[0]) | uint16(f.blockLengthBuffer[1])<<8
				invLength := uint16(f.blockLengthBuffer[2]) | uint16(f.blockLengthBuffer[3])<<8
				if length != ^invLength {
					return f.fail(ErrInvalidUncompressedLength)
				}
				f.blockLength = int(length)
				if f.blockLength == 0 {
					*eob = true
					f.state = stateReadingBFinal
					return true
				}
				f.state = stateDecodingUncompressed
			} else {
				f.state++
			}

		case stateDecodingUncompressed:
			copied := f.output.CopyFrom(r, f.blockLength)
			f.blockLength -= copied
			if f.blockLength == 0 {
				*eob = true
				f.state = stateReadingBFinal
				return true
			}
			if f.output.FreeBytes() == 0 {
				return true // caller will drain before asking for more
			}
			return false // input exhausted before the block finished

		default:
			return true
		}
	}
}

// decodeBlock runs the main literal/length/distance decode loop for a
// static or dynamic compressed block. It loops internally (rather than
// returning to the driving loop after each symbol) so long as there is
// ample buffered output room, matching the freeBytes-bounded loop in
// inflater_managed.rs's decode_block.
func (f *Inflater) decodeBlock(r *bitio.Reader, eob *bool) bool {
	freeBytes := f.output.FreeBytes()

	for freeBytes > maxDeflate64Length {
		switch f.state {
		case stateDecodeTop:
			symbol, status := f.literalLengthTree.GetNextSymbol(r)
			switch status {
			case huffman.NeedInput:
				return false
			case huffman.Invalid:
				return f.fail(ErrInvalidCodeLength)
			}

			switch {
			case symbol < 256:
				f.output.Write(byte(symbol))
				freeBytes--
				continue
			case symbol == 256:
				*eob = true
				f.state = stateReadingBFinal
				return true
			default:
				code := symbol - 257
				if code >= int32(len(extraLengthBits)) {
					return f.fail(ErrInvalidLengthDistance)
				}
				f.lengthCode = code
				f.extraBits = extraLengthBits[code]
				f.length = int(lengthBase[code])
				f.state = stateHaveInitialLength
			}
			fallthrough

		case stateHaveInitialLength:
			if f.extraBits > 0 {
				bits := r.GetBits(f.extraBits)
				if bits < 0 {
					return false
				}
				f.length += int(bits)
			}
			f.state = stateHaveFullLength
			fallthrough

		case stateHaveFullLength:
			if f.blockType == blockDynamic {
				code, status := f.distanceTree.GetNextSymbol(r)
				switch status {
				case huffman.NeedInput:
					return false
				case huffman.Invalid:
					return f.fail(ErrInvalidCodeLength)
				}
				f.distanceCode = code
			} else {
				bits := r.GetBits(5)
				if bits < 0 {
					return false
				}
				f.distanceCode = int32(staticDistanceTreeTable[bits])
			}
			f.state = stateHaveDistCode
			fallthrough

		case stateHaveDistCode:
			if int(f.distanceCode) >= len(extraDistanceBits) {
				return f.fail(ErrInvalidLengthDistance)
			}
			extra := extraDistanceBits[f.distanceCode]
			distance := int(distanceBasePosition[f.distanceCode])
			if extra > 0 {
				bits := r.GetBits(extra)
				if bits < 0 {
					return false
				}
				distance += int(bits)
			}
			if f.length > maxDeflate64Length || distance > maxDeflate64Distance || distance < 1 {
				return f.fail(ErrInvalidLengthDistance)
			}
			f.output.WriteLengthDistance(f.length, distance)
			freeBytes -= f.length
			f.state = stateDecodeTop

		default:
			return true
		}
	}
	return true
}

// decodeDynamicBlockHeader reads HLIT/HDIST/HCLEN, the code-length
// alphabet's own code lengths, and then (via the code-length tree) the
// literal/length and distance trees' code lengths, including the
// 16/17/18 repeat codes. Grounded on
// decode_dynamic_block_header in original_source/src/inflater_managed.rs.
func (f *Inflater) decodeDynamicBlockHeader(r *bitio.Reader) bool {
	for {
		switch f.state {
		case stateReadingNumLitCodes:
			n := r.GetBits(5)
			if n < 0 {
				return false
			}
			f.literalLengthCodeCount = n + 257
			f.state = stateReadingNumDistCodes

		case stateReadingNumDistCodes:
			n := r.GetBits(5)
			if n < 0 {
				return false
			}
			f.distanceCodeCount = n + 1
			f.state = stateReadingNumCodeLengthCodes

		case stateReadingNumCodeLengthCodes:
			n := r.GetBits(4)
			if n < 0 {
				return false
			}
			f.codeLengthCodeCount = n + 4
			f.loopCounter = 0
			f.state = stateReadingCodeLengthCodes

		case stateReadingCodeLengthCodes:
			for f.loopCounter < f.codeLengthCodeCount {
				bits := r.GetBits(3)
				if bits < 0 {
					return false
				}
				f.codeLengthTreeLengths[codeOrder[f.loopCounter]] = byte(bits)
				f.loopCounter++
			}
			for i := f.codeLengthCodeCount; i < int32(huffman.NumberOfCodeLengthTreeElements); i++ {
				f.codeLengthTreeLengths[codeOrder[i]] = 0
			}
			tree, ok := huffman.New(f.codeLengthTreeLengths[:])
			if !ok {
				return f.fail(ErrInvalidHuffmanCode)
			}
			f.codeLengthTree = tree
			f.codeArraySize = f.literalLengthCodeCount + f.distanceCodeCount
			f.loopCounter = 0
			f.state = stateReadingTreeCodesBefore

		case stateReadingTreeCodesBefore, stateReadingTreeCodesAfter:
			for f.loopCounter < f.codeArraySize {
				if f.state == stateReadingTreeCodesBefore {
					code, status := f.codeLengthTree.GetNextSymbol(r)
					switch status {
					case huffman.NeedInput:
						return false
					case huffman.Invalid:
						return f.fail(ErrInvalidCodeLength)
					}
					f.lengthCode = code
				}

				if f.lengthCode <= 15 {
					f.codeList[f.loopCounter] = byte(f.lengthCode)
					f.loopCounter++
					f.state = stateReadingTreeCodesBefore
					continue
				}

				var repeatSymbol byte
				if f.loopCounter > 0 {
					repeatSymbol = f.codeList[f.loopCounter-1]
				}

				var repeatBits uint
				var repeatBase int32
				var fillZero bool
				switch f.lengthCode {
				case 16:
					if f.loopCounter == 0 {
						return f.fail(ErrInvalidRepeatCode)
					}
					repeatBits, repeatBase = 2, 3
				case 17:
					repeatBits, repeatBase, fillZero = 3, 3, true
				case 18:
					repeatBits, repeatBase, fillZero = 7, 11, true
				default:
					return f.fail(ErrInvalidRepeatCode)
				}

				f.state = stateReadingTreeCodesAfter
				bits := r.GetBits(repeatBits)
				if bits < 0 {
					return false
				}
				repeatCount := bits + repeatBase
				if f.loopCounter+repeatCount > f.codeArraySize {
					return f.fail(ErrInvalidRepeatCode)
				}
				fillValue := repeatSymbol
				if fillZero {
					fillValue = 0
				}
				for i := int32(0); i < repeatCount; i++ {
					f.codeList[f.loopCounter] = fillValue
					f.loopCounter++
				}
				f.state = stateReadingTreeCodesBefore
			}

			copy(f.literalLengthTreeLengths[:], f.codeList[:f.literalLengthCodeCount])
			for i := f.literalLengthCodeCount; i < int32(huffman.MaxLiteralTreeElements); i++ {
				f.literalLengthTreeLengths[i] = 0
			}
			copy(f.distanceTreeLengths[:], f.codeList[f.literalLengthCodeCount:f.codeArraySize])
			for i := f.distanceCodeCount; i < int32(huffman.MaxDistTreeElements); i++ {
				f.distanceTreeLengths[i] = 0
			}

			if f.literalLengthTreeLengths[huffman.EndOfBlockCode] == 0 {
				return f.fail(ErrMissingEndOfBlockCode)
			}

			litTree, ok := huffman.New(f.literalLengthTreeLengths[:])
			if !ok {
				return f.fail(ErrInvalidHuffmanCode)
			}
			distTree, ok := huffman.New(f.distanceTreeLengths[:])
			if !ok {
				return f.fail(ErrInvalidHuffmanCode)
			}
			f.literalLengthTree = litTree
			f.distanceTree = distTree
			f.state = stateDecodeTop
			return true

		default:
			return true
		}
	}
}
