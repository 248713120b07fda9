package parser

// Options carry the site-specific constants the extractors need.
type Options struct {
	// PhotoHost serves full listing photos on detail pages.
	PhotoHost string
	// CardPhotoHost serves the thumbnails shown on result cards.
	CardPhotoHost string
	// PageSize is the number of cards the site shows per results page.
	PageSize int
}

func DefaultOptions() Options {
	return Options{
		PhotoHost:     "alaps-photos-kr.kcdn.kz",
		CardPhotoHost: "alakcell-photos-kr.kcdn.kz",
		PageSize:      20,
	}
}

// Parser holds no state besides its options and is safe for concurrent use.
type Parser struct {
	opts Options
}

func New(opts Options) *Parser {
	def := DefaultOptions()
	if opts.PhotoHost == "" {
		opts.PhotoHost = def.PhotoHost
	}
	if opts.CardPhotoHost == "" {
		opts.CardPhotoHost = def.CardPhotoHost
	}
	if opts.PageSize <= 0 {
		opts.PageSize = def.PageSize
	}
	return &Parser{opts: opts}
}
