// Package i18n holds the user-facing messages of the CV assistant.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// MessageID identifies a user-facing message.
type MessageID string

const (
	MsgOnlyDocx            MessageID = "only_docx"
	MsgExtractorMissing    MessageID = "extractor_missing"
	MsgExtractFailed       MessageID = "extract_failed"
	MsgAnalyzerMissing     MessageID = "analyzer_missing"
	MsgReupload            MessageID = "reupload"
	MsgAnalyzeTextFailed   MessageID = "analyze_text_failed"
	MsgAnalyzeImageFailed  MessageID = "analyze_image_failed"
	MsgMalformedResponse   MessageID = "malformed_response"
	MsgNothingToExport     MessageID = "nothing_to_export"
	MsgExporterMissing     MessageID = "exporter_missing"
	MsgExportFailed        MessageID = "export_failed"
	MsgNoSuggestions       MessageID = "no_suggestions"
	MsgUnknownExperience   MessageID = "unknown_experience"
	MsgNoDocument          MessageID = "no_document"
	MsgAnalysisInProgress  MessageID = "analysis_in_progress"
	MsgUnknownField        MessageID = "unknown_field"
	MsgAnalysisInterrupted MessageID = "analysis_interrupted"
	MsgOnlyImage           MessageID = "only_image"

	MsgNamePlaceholder   MessageID = "name_placeholder"
	MsgHeadingSummary    MessageID = "heading_summary"
	MsgHeadingExperience MessageID = "heading_experience"
	MsgHeadingEducation  MessageID = "heading_education"
	MsgHeadingSkills     MessageID = "heading_skills"

	MsgPanelLoading      MessageID = "panel_loading"
	MsgPanelLoadingHint  MessageID = "panel_loading_hint"
	MsgPanelErrorTitle   MessageID = "panel_error_title"
	MsgPanelEmptyTitle   MessageID = "panel_empty_title"
	MsgPanelEmptyHint    MessageID = "panel_empty_hint"
	MsgReportTitle       MessageID = "report_title"
	MsgReportOverview    MessageID = "report_overview"
	MsgReportStrengths   MessageID = "report_strengths"
	MsgReportWeaknesses  MessageID = "report_weaknesses"
	MsgReportRewritten   MessageID = "report_rewritten"
	MsgReportSummary     MessageID = "report_summary"
	MsgReportExperience  MessageID = "report_experience"
	MsgReportExtras      MessageID = "report_extras"
	MsgReportExtrasHint  MessageID = "report_extras_hint"
	MsgReportSkills      MessageID = "report_skills"
	MsgReportKeywords    MessageID = "report_keywords"
	MsgReportProjects    MessageID = "report_projects"
	MsgReportCorrections MessageID = "report_corrections"
	MsgLabelOriginal     MessageID = "label_original"
	MsgLabelSuggestion   MessageID = "label_suggestion"
)

var (
	supported = []language.Tag{language.English, language.Vietnamese}
	matcher   = language.NewMatcher(supported)
)

var catalog = map[language.Tag]map[MessageID]string{
	language.English: {
		MsgOnlyDocx:            "Please upload a DOCX file only.",
		MsgExtractorMissing:    "The DOCX reader is not available. Please check the installation.",
		MsgExtractFailed:       "Could not read the DOCX content. Please try again.",
		MsgAnalyzerMissing:     "The AI assistant is not configured correctly. Check the logs for details.",
		MsgReupload:            "Please upload your DOCX CV again.",
		MsgAnalyzeTextFailed:   "Could not analyze the CV from DOCX. Please try again or check the AI configuration and API quota.",
		MsgAnalyzeImageFailed:  "Could not analyze the CV image. Please try again or check the AI configuration and API quota.",
		MsgMalformedResponse:   "The AI response did not have the expected format. Please try again.",
		MsgNothingToExport:     "There is no CV content to export to DOCX yet.",
		MsgExporterMissing:     "The DOCX converter is not available. Please check the installation.",
		MsgExportFailed:        "DOCX export failed. Please try again.",
		MsgNoSuggestions:       "There are no suggestions to apply yet.",
		MsgUnknownExperience:   "That work experience entry does not exist.",
		MsgNoDocument:          "There is no CV to edit yet.",
		MsgAnalysisInProgress:  "An analysis is already running. Please wait for it to finish.",
		MsgUnknownField:        "That CV field cannot be edited.",
		MsgAnalysisInterrupted: "The analysis was interrupted.",
		MsgOnlyImage:           "Please choose a PNG, JPEG or WEBP image of your CV.",

		MsgNamePlaceholder:   "Full Name",
		MsgHeadingSummary:    "Summary",
		MsgHeadingExperience: "Work Experience",
		MsgHeadingEducation:  "Education",
		MsgHeadingSkills:     "Skills",

		MsgPanelLoading:      "AI is analyzing your CV...",
		MsgPanelLoadingHint:  "This can take a few seconds. Please wait.",
		MsgPanelErrorTitle:   "ANALYSIS ERROR",
		MsgPanelEmptyTitle:   "NO ANALYSIS YET",
		MsgPanelEmptyHint:    "Choose \"Re-analyze\" to get feedback from the AI.",
		MsgReportTitle:       "AI ANALYSIS RESULT",
		MsgReportOverview:    "OVERVIEW",
		MsgReportStrengths:   "STRENGTHS",
		MsgReportWeaknesses:  "AREAS TO IMPROVE",
		MsgReportRewritten:   "REWRITTEN CONTENT",
		MsgReportSummary:     "SUMMARY (OPTIMIZED)",
		MsgReportExperience:  "WORK EXPERIENCE (OPTIMIZED)",
		MsgReportExtras:      "ADDITIONAL SUGGESTIONS",
		MsgReportExtrasHint:  "Consider adding the following to make the CV more professional:",
		MsgReportSkills:      "SKILLS:",
		MsgReportKeywords:    "KEYWORDS:",
		MsgReportProjects:    "PROJECTS:",
		MsgReportCorrections: "DETAILED CORRECTIONS",
		MsgLabelOriginal:     "Original:",
		MsgLabelSuggestion:   "Suggestion:",
	},
	language.Vietnamese: {
		MsgOnlyDocx:            "Vui lòng chỉ tải lên tệp DOCX.",
		MsgExtractorMissing:    "Thiếu thư viện đọc DOCX. Vui lòng kiểm tra cài đặt.",
		MsgExtractFailed:       "Không thể đọc nội dung DOCX. Vui lòng thử lại.",
		MsgAnalyzerMissing:     "Trợ lý AI chưa được định cấu hình đúng cách. Vui lòng kiểm tra nhật ký để biết chi tiết.",
		MsgReupload:            "Vui lòng tải lại file DOCX CV của bạn.",
		MsgAnalyzeTextFailed:   "Không thể phân tích CV từ DOCX. Vui lòng thử lại hoặc kiểm tra cấu hình AI và hạn mức API.",
		MsgAnalyzeImageFailed:  "Không thể phân tích hình ảnh CV. Vui lòng thử lại hoặc kiểm tra cấu hình AI và hạn mức API.",
		MsgMalformedResponse:   "Phản hồi từ AI không có định dạng như mong đợi.",
		MsgNothingToExport:     "Chưa có nội dung CV để xuất ra DOCX.",
		MsgExporterMissing:     "Thiếu thư viện chuyển đổi DOCX. Vui lòng kiểm tra cài đặt.",
		MsgExportFailed:        "Xuất DOCX thất bại. Vui lòng thử lại.",
		MsgNoSuggestions:       "Chưa có đề xuất nào để áp dụng.",
		MsgUnknownExperience:   "Mục kinh nghiệm này không tồn tại.",
		MsgNoDocument:          "Chưa có CV để chỉnh sửa.",
		MsgAnalysisInProgress:  "AI đang phân tích CV của bạn. Vui lòng chờ.",
		MsgUnknownField:        "Không thể chỉnh sửa trường này.",
		MsgAnalysisInterrupted: "Quá trình phân tích đã bị gián đoạn.",
		MsgOnlyImage:           "Vui lòng chọn ảnh CV định dạng PNG, JPEG hoặc WEBP.",

		MsgNamePlaceholder:   "Họ và Tên",
		MsgHeadingSummary:    "Tóm tắt bản thân",
		MsgHeadingExperience: "Kinh nghiệm làm việc",
		MsgHeadingEducation:  "Học vấn",
		MsgHeadingSkills:     "Kỹ năng",

		MsgPanelLoading:      "AI đang phân tích CV của bạn...",
		MsgPanelLoadingHint:  "Quá trình này có thể mất vài giây. Vui lòng chờ.",
		MsgPanelErrorTitle:   "LỖI PHÂN TÍCH",
		MsgPanelEmptyTitle:   "CHƯA CÓ PHÂN TÍCH",
		MsgPanelEmptyHint:    "Nhấn \"Phân tích lại\" để nhận đánh giá từ AI.",
		MsgReportTitle:       "KẾT QUẢ PHÂN TÍCH TỪ AI",
		MsgReportOverview:    "PHÂN TÍCH TỔNG QUAN",
		MsgReportStrengths:   "ĐIỂM MẠNH",
		MsgReportWeaknesses:  "ĐIỂM CẦN CẢI THIỆN",
		MsgReportRewritten:   "VIẾT LẠI NỘI DUNG",
		MsgReportSummary:     "TÓM TẮT BẢN THÂN (ĐÃ TỐI ƯU)",
		MsgReportExperience:  "KINH NGHIỆM LÀM VIỆC (ĐÃ TỐI ƯU)",
		MsgReportExtras:      "ĐỀ XUẤT BỔ SUNG",
		MsgReportExtrasHint:  "Hãy cân nhắc thêm các mục sau vào CV để tăng tính chuyên nghiệp:",
		MsgReportSkills:      "KỸ NĂNG:",
		MsgReportKeywords:    "TỪ KHÓA:",
		MsgReportProjects:    "DỰ ÁN:",
		MsgReportCorrections: "CHỈNH SỬA CHI TIẾT",
		MsgLabelOriginal:     "Gốc:",
		MsgLabelSuggestion:   "Đề xuất:",
	},
}

// Locale is a resolved, supported language.
type Locale struct {
	tag language.Tag
}

// English is the fallback locale.
var English = Locale{tag: language.English}

// ParseLocale matches a BCP 47 string ("vi", "vi-VN", "en-US") against the
// supported locales. Unknown or empty input falls back to English.
func ParseLocale(s string) Locale {
	s = strings.TrimSpace(s)
	if s == "" {
		return English
	}

	tag, err := language.Parse(s)
	if err != nil {
		return English
	}

	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return English
	}

	return Locale{tag: supported[index]}
}

// String returns the BCP 47 form of the locale.
func (l Locale) String() string {
	if l.tag == language.Und {
		return English.tag.String()
	}
	return l.tag.String()
}

// Language is the English name of the locale's language, for prompts.
func (l Locale) Language() string {
	tag := l.tag
	if tag == language.Und {
		tag = English.tag
	}
	return display.English.Tags().Name(tag)
}

// Text returns the message for the locale, falling back to English.
func (l Locale) Text(id MessageID) string {
	if messages, ok := catalog[l.tag]; ok {
		if msg, ok := messages[id]; ok {
			return msg
		}
	}
	return catalog[language.English][id]
}
