package postprocess

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Rule rewrites every occurrence of From with To.
type Rule struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// CharClass maps any word containing one of Chars to Type. Classes are
// checked in order; the first hit wins.
type CharClass struct {
	Chars string         `yaml:"chars"`
	Type  CorrectionType `yaml:"type"`
}

// PeriodKind says how a period-of-day qualifier adjusts the hour.
type PeriodKind string

const (
	// PeriodAM maps hour 12 to 0.
	PeriodAM PeriodKind = "am"
	// PeriodPM adds 12 to hours below 12.
	PeriodPM PeriodKind = "pm"
	// PeriodNoon raises hours below 12 to 12.
	PeriodNoon PeriodKind = "noon"
)

// Period is a period-of-day word such as "下午".
type Period struct {
	Word string     `yaml:"word"`
	Kind PeriodKind `yaml:"kind"`
}

// RelativeDate is a keyword resolved to reference date + Offset days.
type RelativeDate struct {
	Word   string `yaml:"word"`
	Offset int    `yaml:"offset"`
}

// Category is an event category inferred from keywords.
type Category struct {
	Key      string   `yaml:"key"`
	Label    string   `yaml:"label"`
	Color    string   `yaml:"color"`
	Keywords []string `yaml:"keywords"`
}

// Tables holds every localized asset the pipeline uses. Tables are read-only
// once handed to a [Processor].
//
// Lexicon and Numerals are applied in declaration order and may cascade: a
// later rule sees the output of earlier rules. A rule whose source contains
// the source of an earlier rule in the same table can never fire on that
// text, so [Tables.Validate] rejects it; longer tokens must come first.
type Tables struct {
	Locale string `yaml:"locale"`

	// Punctuation lists the characters the normalizer deletes.
	Punctuation string `yaml:"punctuation"`
	// UnitParticles lists time/date unit characters that must not be
	// surrounded by whitespace ("3 点" -> "3点").
	UnitParticles string `yaml:"unit_particles"`

	Lexicon     []Rule      `yaml:"lexicon"`
	Numerals    []Rule      `yaml:"numerals"`
	CharClasses []CharClass `yaml:"char_classes"`

	// ClockSeparators separate hour from minute ("点", ":").
	ClockSeparators string `yaml:"clock_separators"`
	// MinuteSuffix optionally follows the minute ("分").
	MinuteSuffix string   `yaml:"minute_suffix"`
	Periods      []Period `yaml:"periods"`

	// RelativeDates drive the date resolver stage.
	RelativeDates []RelativeDate `yaml:"relative_dates"`
	// DateTriggers mark text as carrying a date for the extractor.
	DateTriggers []string `yaml:"date_triggers"`
	// EventDates is the extractor's own ordered date lookup; no match means
	// the reference date itself.
	EventDates []RelativeDate `yaml:"event_dates"`

	Categories []Category `yaml:"categories"`

	DefaultTitle     string `yaml:"default_title"`
	DefaultColor     string `yaml:"default_color"`
	DefaultStartTime string `yaml:"default_start_time"`
	// DescriptionTemplate is the event description; "{text}" is replaced by
	// the corrected transcript.
	DescriptionTemplate string `yaml:"description_template"`
}

// Validate checks that t is usable and that the substitution tables respect
// the longest-token-first ordering. All problems are returned joined.
func (t *Tables) Validate() error {
	var errs []error

	errs = append(errs, validateRules("lexicon", t.Lexicon)...)
	errs = append(errs, validateRules("numerals", t.Numerals)...)

	for i, c := range t.CharClasses {
		if c.Chars == "" {
			errs = append(errs, fmt.Errorf("char_classes[%d]: chars must not be empty", i))
		}
		if !c.Type.Valid() {
			errs = append(errs, fmt.Errorf("char_classes[%d]: unknown correction type %q", i, c.Type))
		}
	}

	if t.ClockSeparators == "" {
		errs = append(errs, errors.New("clock_separators must not be empty"))
	}
	for i, p := range t.Periods {
		if p.Word == "" {
			errs = append(errs, fmt.Errorf("periods[%d]: word must not be empty", i))
		}
		switch p.Kind {
		case PeriodAM, PeriodPM, PeriodNoon:
		default:
			errs = append(errs, fmt.Errorf("periods[%d]: unknown kind %q", i, p.Kind))
		}
	}

	for i, d := range t.RelativeDates {
		if d.Word == "" {
			errs = append(errs, fmt.Errorf("relative_dates[%d]: word must not be empty", i))
		}
	}
	for i, d := range t.EventDates {
		if d.Word == "" {
			errs = append(errs, fmt.Errorf("event_dates[%d]: word must not be empty", i))
		}
	}
	for i, w := range t.DateTriggers {
		if w == "" {
			errs = append(errs, fmt.Errorf("date_triggers[%d]: must not be empty", i))
		}
	}

	for i, c := range t.Categories {
		if c.Label == "" {
			errs = append(errs, fmt.Errorf("categories[%d]: label must not be empty", i))
		}
		if len(c.Keywords) == 0 {
			errs = append(errs, fmt.Errorf("categories[%d] (%s): no keywords", i, c.Label))
		}
		for j, kw := range c.Keywords {
			if kw == "" {
				errs = append(errs, fmt.Errorf("categories[%d].keywords[%d]: must not be empty", i, j))
			}
		}
	}

	if !isCanonicalTime(t.DefaultStartTime) {
		errs = append(errs, fmt.Errorf("default_start_time %q is not HH:MM", t.DefaultStartTime))
	}
	if t.DefaultTitle == "" {
		errs = append(errs, errors.New("default_title must not be empty"))
	}

	return errors.Join(errs...)
}

func validateRules(table string, rules []Rule) []error {
	var errs []error
	for j, r := range rules {
		if r.From == "" {
			errs = append(errs, fmt.Errorf("%s[%d]: from must not be empty", table, j))
			continue
		}
		if r.From == r.To {
			errs = append(errs, fmt.Errorf("%s[%d]: %q rewrites to itself", table, j, r.From))
		}
		for i := 0; i < j; i++ {
			prev := rules[i].From
			if prev != "" && strings.Contains(r.From, prev) {
				errs = append(errs, fmt.Errorf("%s[%d]: %q is shadowed by earlier rule %q; declare it first", table, j, r.From, prev))
			}
		}
	}
	return errs
}

// classify infers the correction type of word from the character classes.
func (t *Tables) classify(word string) CorrectionType {
	for _, c := range t.CharClasses {
		if strings.ContainsAny(word, c.Chars) {
			return c.Type
		}
	}
	return CorrectionCommonWord
}

// DefaultTables returns the zh-CN tables. Each call returns a fresh copy.
func DefaultTables() *Tables {
	return &Tables{
		Locale:        "zh-CN",
		Punctuation:   "，。！？；：,.!?;",
		UnitParticles: "点分号月日年",

		Lexicon: []Rule{
			// doubled-character glitches
			{"明明", "明天"},
			{"后后", "后天"},
			{"开开", "开会"},
			{"会会", "会议"},
			{"点点", "点"},
			{"分分", "分"},
			{"号号", "号"},
			{"月月", "月"},
			{"年年", "年"},

			// spoken clock hours, longest first
			{"二十三点", "23点"},
			{"二十二点", "22点"},
			{"二十一点", "21点"},
			{"二十点", "20点"},
			{"十九点", "19点"},
			{"十八点", "18点"},
			{"十七点", "17点"},
			{"十六点", "16点"},
			{"十五点", "15点"},
			{"十四点", "14点"},
			{"十三点", "13点"},
			{"十二点", "12点"},
			{"十一点", "11点"},
			{"十点", "10点"},
			{"一点", "1点"},
			{"二点", "2点"},
			{"三点", "3点"},
			{"四点", "4点"},
			{"五点", "5点"},
			{"六点", "6点"},
			{"七点", "7点"},
			{"八点", "8点"},
			{"九点", "9点"},
			{"点半", "点30分"},
			{"半点", "30分"},
			{"一刻", "15分"},
			{"三刻", "45分"},

			// relative dates
			{"这周", "本周"},
			{"这个月", "本月"},
			{"下星期", "下周"},

			// event categories
			{"开会", "会议"},
			{"吃饭", "聚餐"},
			{"上课", "课程"},
			{"看医生", "医疗预约"},
			{"看牙医", "牙医预约"},

			// spoken digits
			{"幺", "1"},
			{"两", "2"},
			{"俩", "2"},
			{"仨", "3"},
			{"零", "0"},
		},

		Numerals: spokenNumerals(),

		CharClasses: []CharClass{
			{Chars: "点分时", Type: CorrectionTime},
			{Chars: "天月年周", Type: CorrectionDate},
			{Chars: "一二三四五六七八九十", Type: CorrectionNumber},
			{Chars: "会议约聚餐课程", Type: CorrectionEventType},
		},

		ClockSeparators: "点:：",
		MinuteSuffix:    "分",
		Periods: []Period{
			{"上午", PeriodAM},
			{"早上", PeriodAM},
			{"下午", PeriodPM},
			{"晚上", PeriodPM},
			{"傍晚", PeriodPM},
			{"中午", PeriodNoon},
		},

		RelativeDates: []RelativeDate{
			{"今天", 0},
			{"明天", 1},
			{"后天", 2},
			{"大后天", 3},
		},
		DateTriggers: []string{"今天", "明天", "后天", "下周", "下个月"},
		EventDates: []RelativeDate{
			{"大后天", 3},
			{"明天", 1},
			{"后天", 2},
		},

		Categories: []Category{
			{Key: "meeting", Label: "会议", Color: "blue", Keywords: []string{"开会", "会议", "例会", "讨论", "商议"}},
			{Key: "social", Label: "约会", Color: "green", Keywords: []string{"约会", "见面", "聚会"}},
			{Key: "dining", Label: "聚餐", Color: "orange", Keywords: []string{"聚餐", "吃饭", "喝茶", "咖啡"}},
			{Key: "study", Label: "课程", Color: "purple", Keywords: []string{"上课", "课程", "培训", "学习", "讲座", "研讨"}},
			{Key: "interview", Label: "面试", Color: "blue", Keywords: []string{"面试", "招聘", "求职"}},
			{Key: "medical", Label: "医疗预约", Color: "red", Keywords: []string{"医疗", "医生", "医院", "体检", "看病", "牙医", "检查"}},
			{Key: "fitness", Label: "运动", Color: "red", Keywords: []string{"运动", "健身", "跑步", "游泳", "瑜伽", "篮球", "足球"}},
			{Key: "shopping", Label: "购物", Color: "pink", Keywords: []string{"购物", "买东西", "逛街"}},
			{Key: "travel", Label: "旅行", Color: "pink", Keywords: []string{"旅行", "出差", "度假", "旅游"}},
		},

		DefaultTitle:        "新事件",
		DefaultColor:        "pink",
		DefaultStartTime:    "09:00",
		DescriptionTemplate: "基于语音识别创建：{text}",
	}
}

var spokenDigits = []string{"一", "二", "三", "四", "五", "六", "七", "八", "九"}

// spokenNumerals builds the numeral rules for 1 to 59. Each tens block lists
// its compounds (二十一..二十九) ahead of the bare tens (二十), and the
// teens ahead of 十, so no compound is split into tens and units.
func spokenNumerals() []Rule {
	var rules []Rule
	for tens := 2; tens <= 5; tens++ {
		prefix := spokenDigits[tens-1] + "十"
		for u := 1; u <= 9; u++ {
			rules = append(rules, Rule{prefix + spokenDigits[u-1], strconv.Itoa(tens*10 + u)})
		}
		rules = append(rules, Rule{prefix, strconv.Itoa(tens * 10)})
	}
	for u := 1; u <= 9; u++ {
		rules = append(rules, Rule{"十" + spokenDigits[u-1], strconv.Itoa(10 + u)})
	}
	rules = append(rules, Rule{"十", "10"})
	for u := 1; u <= 9; u++ {
		rules = append(rules, Rule{spokenDigits[u-1], strconv.Itoa(u)})
	}
	return rules
}
