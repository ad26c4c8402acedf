// Package fileinput enhances a bare file input into a drop zone with
// instructions, a polite live region, and per-file preview generation. The
// generated structure, class names, and strings mirror the reference design
// system exactly; the stylesheet keys off these selectors.
package fileinput

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/civicui/enhance-go/dom"
	"github.com/civicui/enhance-go/utils/images"
)

const (
	DropzoneClass       = "usa-file-input"
	InputClass          = "usa-file-input__input"
	TargetClass         = "usa-file-input__target"
	BoxClass            = "usa-file-input__box"
	InstructionsClass   = "usa-file-input__instructions"
	DragTextClass       = "usa-file-input__drag-text"
	ChooseClass         = "usa-file-input__choose"
	PreviewClass        = "usa-file-input__preview"
	PreviewHeadingClass = "usa-file-input__preview-heading"
	PreviewImageClass   = "usa-file-input__preview-image"
	AcceptedFilesClass  = "usa-file-input__accepted-files-message"
)

// Modifier and state classes.
const (
	DragClass        = "usa-file-input--drag"
	DisabledModifier = "usa-file-input--disabled"
	InvalidFileClass = "has-invalid-file"
	LoadingClass     = "is-loading"
	HiddenClass      = "display-none"
	SROnlyClass      = "usa-sr-only"
)

// Fallback icon modifiers, selected by file extension when a read fails.
const (
	PDFPreviewClass     = PreviewImageClass + "--pdf"
	WordPreviewClass    = PreviewImageClass + "--word"
	ExcelPreviewClass   = PreviewImageClass + "--excel"
	VideoPreviewClass   = PreviewImageClass + "--video"
	GenericPreviewClass = PreviewImageClass + "--generic"
)

const defaultErrorMessage = "This is not a valid file type."

// dragText returns the visible instructions text.
func dragText(multiple bool) (drag, choose string) {
	if multiple {
		return "Drag files here or ", "choose from folder"
	}
	return "Drag file here or ", "choose from folder"
}

func instructionsText(multiple bool) string {
	drag, choose := dragText(multiple)
	return drag + choose
}

func defaultStatusText(multiple bool) string {
	if multiple {
		return "No files selected."
	}
	return "No file selected."
}

func changeLabel(multiple bool) string {
	if multiple {
		return "Change files"
	}
	return "Change file"
}

// selectedStatusText phrases the announcement: singular for exactly one
// file, plural with a comma-joined name list otherwise.
func selectedStatusText(names []string) string {
	if len(names) == 1 {
		return "You have selected the file: " + names[0]
	}
	return fmt.Sprintf("You have selected %d files: %s", len(names), strings.Join(names, ", "))
}

func headingText(count int) string {
	if count == 1 {
		return "Selected file"
	}
	return fmt.Sprintf("%d files selected", count)
}

// buildInstructions creates the visible drag-instructions node.
func buildInstructions(multiple bool) *html.Node {
	instructions := dom.NewElement("div",
		"class", InstructionsClass,
		"aria-hidden", "true",
	)
	drag, choose := dragText(multiple)

	dragSpan := dom.NewElement("span", "class", DragTextClass)
	dragSpan.AppendChild(dom.NewText(drag))
	chooseSpan := dom.NewElement("span", "class", ChooseClass)
	chooseSpan.AppendChild(dom.NewText(choose))

	instructions.AppendChild(dragSpan)
	instructions.AppendChild(chooseSpan)
	return instructions
}

// buildStatusNode creates the screen-reader-only live region.
func buildStatusNode(multiple bool) *html.Node {
	status := dom.NewElement("div",
		"class", SROnlyClass,
		"aria-live", "polite",
	)
	status.AppendChild(dom.NewText(defaultStatusText(multiple)))
	return status
}

// buildPreview creates one preview node with its loading placeholder image.
// The file name goes in as a text node; the serializer escapes it.
func buildPreview(generatedID, fileName string) (previewEl, img *html.Node) {
	previewEl = dom.NewElement("div",
		"class", PreviewClass,
		"aria-hidden", "true",
	)
	img = dom.NewElement("img",
		"id", generatedID,
		"src", images.SpacerGIF,
		"alt", "",
		"class", PreviewImageClass+" "+LoadingClass,
	)
	previewEl.AppendChild(img)
	previewEl.AppendChild(dom.NewText(fileName))
	return previewEl, img
}

// buildHeading creates the selection-summary heading shown in place of the
// instructions while files are selected.
func buildHeading(count int, multiple bool) *html.Node {
	heading := dom.NewElement("div", "class", PreviewHeadingClass)
	heading.AppendChild(dom.NewText(headingText(count) + " "))

	change := dom.NewElement("span", "class", ChooseClass)
	change.AppendChild(dom.NewText(changeLabel(multiple)))
	heading.AppendChild(change)
	return heading
}

// buildErrorMessage creates the sanitized inline rejection message.
func buildErrorMessage(message string) *html.Node {
	errEl := dom.NewElement("div",
		"class", AcceptedFilesClass,
		"aria-live", "polite",
	)
	errEl.AppendChild(dom.NewText(message))
	return errEl
}

// fallbackClass selects one of five category icons by file extension.
func fallbackClass(fileName string) string {
	name := strings.ToLower(fileName)
	switch {
	case strings.Contains(name, ".pdf"):
		return PDFPreviewClass
	case strings.Contains(name, ".doc") || strings.Contains(name, ".pages"):
		return WordPreviewClass
	case strings.Contains(name, ".xls") || strings.Contains(name, ".numbers"):
		return ExcelPreviewClass
	case strings.Contains(name, ".mov") || strings.Contains(name, ".mp4"):
		return VideoPreviewClass
	default:
		return GenericPreviewClass
	}
}
