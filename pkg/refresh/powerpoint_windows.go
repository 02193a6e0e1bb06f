//go:build windows

package refresh

import (
	"context"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"gitlab.com/tozd/go/errors"
)

// msoTrue is the Office tri-state true value.
const msoTrue = -1

// 🏭 NewPowerPointFactory automates a local PowerPoint installation over
// COM. CoInitialize and CoUninitialize are paired through the session's
// Quit, mirroring the host's process-wide init/teardown requirement.
func NewPowerPointFactory() Factory {
	return func(ctx context.Context) (Automation, error) {
		if err := ole.CoInitialize(0); err != nil {
			return nil, errors.Errorf("initializing COM: %w", err)
		}

		unknown, err := oleutil.CreateObject("PowerPoint.Application")
		if err != nil {
			ole.CoUninitialize()
			return nil, errors.Errorf("starting PowerPoint: %w", err)
		}
		app, err := unknown.QueryInterface(ole.IID_IDispatch)
		unknown.Release()
		if err != nil {
			ole.CoUninitialize()
			return nil, errors.Errorf("binding PowerPoint dispatch: %w", err)
		}
		return &comAutomation{app: app}, nil
	}
}

type comAutomation struct {
	app *ole.IDispatch
}

func (a *comAutomation) Open(ctx context.Context, path string) (Document, error) {
	presentations, err := oleutil.GetProperty(a.app, "Presentations")
	if err != nil {
		return nil, errors.Errorf("getting Presentations: %w", err)
	}
	defer presentations.Clear()

	// Open(path, ReadOnly:=false, Untitled:=false, WithWindow:=false)
	pres, err := oleutil.CallMethod(presentations.ToIDispatch(), "Open", path, 0, 0, 0)
	if err != nil {
		return nil, errors.Errorf("opening presentation %s: %w", path, err)
	}
	return &comDocument{pres: pres.ToIDispatch()}, nil
}

func (a *comAutomation) Quit(ctx context.Context) error {
	_, err := oleutil.CallMethod(a.app, "Quit")
	a.app.Release()
	ole.CoUninitialize()
	if err != nil {
		return errors.Errorf("quitting PowerPoint: %w", err)
	}
	return nil
}

type comDocument struct {
	pres *ole.IDispatch
}

func (d *comDocument) Charts(ctx context.Context) ([]Chart, error) {
	slides, err := oleutil.GetProperty(d.pres, "Slides")
	if err != nil {
		return nil, errors.Errorf("getting Slides: %w", err)
	}
	defer slides.Clear()
	slidesDisp := slides.ToIDispatch()

	countVar, err := oleutil.GetProperty(slidesDisp, "Count")
	if err != nil {
		return nil, errors.Errorf("counting slides: %w", err)
	}
	slideCount := int(countVar.Val)

	var charts []Chart
	for i := 1; i <= slideCount; i++ {
		slide, err := oleutil.GetProperty(slidesDisp, "Item", i)
		if err != nil {
			return nil, errors.Errorf("getting slide %d: %w", i, err)
		}
		slideDisp := slide.ToIDispatch()

		shapes, err := oleutil.GetProperty(slideDisp, "Shapes")
		if err != nil {
			return nil, errors.Errorf("getting shapes of slide %d: %w", i, err)
		}
		shapesDisp := shapes.ToIDispatch()

		shapeCountVar, err := oleutil.GetProperty(shapesDisp, "Count")
		if err != nil {
			return nil, errors.Errorf("counting shapes of slide %d: %w", i, err)
		}

		for j := 1; j <= int(shapeCountVar.Val); j++ {
			shape, err := oleutil.GetProperty(shapesDisp, "Item", j)
			if err != nil {
				return nil, errors.Errorf("getting shape %d of slide %d: %w", j, i, err)
			}
			shapeDisp := shape.ToIDispatch()

			hasChart, err := oleutil.GetProperty(shapeDisp, "HasChart")
			if err != nil || int(hasChart.Val) != msoTrue {
				continue
			}
			charts = append(charts, &comChart{shape: shapeDisp, slide: i})
		}
	}
	return charts, nil
}

func (d *comDocument) Save(ctx context.Context) error {
	if _, err := oleutil.CallMethod(d.pres, "Save"); err != nil {
		return errors.Errorf("saving presentation: %w", err)
	}
	return nil
}

func (d *comDocument) Close(ctx context.Context) error {
	_, err := oleutil.CallMethod(d.pres, "Close")
	d.pres.Release()
	if err != nil {
		return errors.Errorf("closing presentation: %w", err)
	}
	return nil
}

type comChart struct {
	shape *ole.IDispatch
	slide int
}

func (c *comChart) Slide() int {
	return c.slide
}

func (c *comChart) Refresh(ctx context.Context) error {
	chart, err := oleutil.GetProperty(c.shape, "Chart")
	if err != nil {
		return errors.Errorf("getting chart: %w", err)
	}
	chartDisp := chart.ToIDispatch()

	chartData, err := oleutil.GetProperty(chartDisp, "ChartData")
	if err != nil {
		return errors.Errorf("getting chart data: %w", err)
	}
	if _, err := oleutil.CallMethod(chartData.ToIDispatch(), "Activate"); err != nil {
		return errors.Errorf("activating chart data: %w", err)
	}
	if _, err := oleutil.CallMethod(chartDisp, "Refresh"); err != nil {
		return errors.Errorf("refreshing chart: %w", err)
	}
	return nil
}
