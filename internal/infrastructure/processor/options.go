package processor

type Option func(p *ImageProcessor)

func JPEGQuality(q int) Option {
	return func(p *ImageProcessor) {
		if q > 0 && q <= 100 {
			p.quality = q
		}
	}
}
