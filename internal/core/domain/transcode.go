package domain

// TranscodeRequest asks for a re-encode of the source at the given quality.
// QualityPercent is in [1,100] and gets normalized by the encoder.
type TranscodeRequest struct {
	Source         ImageAsset
	QualityPercent int
}

// TranscodeResult reports the re-encoded asset and its size change. The ratio
// is display data only and never persisted.
type TranscodeResult struct {
	Encoded          ImageAsset
	OriginalByteSize int
	EncodedByteSize  int
	RatioPercent     float64
}

// CompressionRatio computes the saved-size percentage. A negative value means
// the encoded output grew; no smaller-of-the-two fallback is applied.
func CompressionRatio(originalSize, encodedSize int) float64 {
	if originalSize == 0 {
		return 0
	}
	return (1 - float64(encodedSize)/float64(originalSize)) * 100
}
