package rendering

import "fmt"

// Orientation of the printed page.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// A4 paper in inches.
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
	mmPerInch      = 25.4
)

// PageSettings are the capture parameters for PDF and raster exports.
type PageSettings struct {
	MarginTopMM    float64     `json:"margin_top_mm" yaml:"margin_top_mm"`
	MarginRightMM  float64     `json:"margin_right_mm" yaml:"margin_right_mm"`
	MarginBottomMM float64     `json:"margin_bottom_mm" yaml:"margin_bottom_mm"`
	MarginLeftMM   float64     `json:"margin_left_mm" yaml:"margin_left_mm"`
	ImageQuality   float64     `json:"image_quality" yaml:"image_quality"`
	RasterScale    float64     `json:"raster_scale" yaml:"raster_scale"`
	Format         string      `json:"format" yaml:"format"`
	Orientation    Orientation `json:"orientation" yaml:"orientation"`
}

// DefaultPageSettings returns 10mm margins, 0.98 image quality, 3x raster scale, A4 portrait.
func DefaultPageSettings() PageSettings {
	return PageSettings{
		MarginTopMM:    10,
		MarginRightMM:  10,
		MarginBottomMM: 10,
		MarginLeftMM:   10,
		ImageQuality:   0.98,
		RasterScale:    3,
		Format:         "a4",
		Orientation:    Portrait,
	}
}

// Validate rejects settings the capture cannot honor.
func (s PageSettings) Validate() error {
	if s.Format != "a4" {
		return fmt.Errorf("unsupported page format %q", s.Format)
	}
	if s.Orientation != Portrait && s.Orientation != Landscape {
		return fmt.Errorf("unsupported orientation %q", s.Orientation)
	}
	if s.ImageQuality <= 0 || s.ImageQuality > 1 {
		return fmt.Errorf("image quality must be in (0, 1], got %v", s.ImageQuality)
	}
	if s.RasterScale <= 0 {
		return fmt.Errorf("raster scale must be positive, got %v", s.RasterScale)
	}
	for _, m := range []float64{s.MarginTopMM, s.MarginRightMM, s.MarginBottomMM, s.MarginLeftMM} {
		if m < 0 {
			return fmt.Errorf("margins must not be negative")
		}
	}
	return nil
}

// PaperInches returns the paper width and height for the orientation.
func (s PageSettings) PaperInches() (width, height float64) {
	if s.Orientation == Landscape {
		return a4HeightInches, a4WidthInches
	}
	return a4WidthInches, a4HeightInches
}

// JPEGQuality converts ImageQuality to the 0-100 scale.
func (s PageSettings) JPEGQuality() int {
	q := int(s.ImageQuality*100 + 0.5)
	if q > 99 {
		// 100 switches chromedp screenshots to PNG
		q = 99
	}
	return q
}

func mmToInches(mm float64) float64 {
	return mm / mmPerInch
}
