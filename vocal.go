package swara

type transliteration struct {
	hindi, ipa, engTrans string
}

// Consonants and vowels are keyed by their ISO 15919 romanization.
var (
	consonantTable = map[string]transliteration{
		"ka": {"क", "k", "ka"}, "kha": {"ख", "kʰ", "kha"}, "ga": {"ग", "g", "ga"}, "gha": {"घ", "gʱ", "gha"}, "ṅa": {"ङ", "ŋ", "nga"},
		"ca": {"च", "t͡ʃ", "cha"}, "cha": {"छ", "t͡ʃʰ", "chha"}, "ja": {"ज", "d͡ʒ", "ja"}, "jha": {"झ", "d͡ʒʱ", "jha"}, "ña": {"ञ", "ɲ", "nya"},
		"ṭa": {"ट", "ʈ", "ta"}, "ṭha": {"ठ", "ʈʰ", "tha"}, "ḍa": {"ड", "ɖ", "da"}, "ḍha": {"ढ", "ɖʱ", "dha"}, "ṇa": {"ण", "ɳ", "na"},
		"ta": {"त", "t̪", "ta"}, "tha": {"थ", "t̪ʰ", "tha"}, "da": {"द", "d̪", "da"}, "dha": {"ध", "d̪ʱ", "dha"}, "na": {"न", "n", "na"},
		"pa": {"प", "p", "pa"}, "pha": {"फ", "pʰ", "pha"}, "ba": {"ब", "b", "ba"}, "bha": {"भ", "bʱ", "bha"}, "ma": {"म", "m", "ma"},
		"ya": {"य", "j", "ya"}, "ra": {"र", "r", "ra"}, "la": {"ल", "l", "la"}, "va": {"व", "ʋ", "va"},
		"śa": {"श", "ʃ", "sha"}, "ṣa": {"ष", "ʂ", "sha"}, "sa": {"स", "s", "sa"}, "ha": {"ह", "ɦ", "ha"},
	}
	vowelTable = map[string]transliteration{
		"a": {"अ", "ə", "a"}, "ā": {"आ", "aː", "aa"}, "i": {"इ", "ɪ", "i"}, "ī": {"ई", "iː", "ee"},
		"u": {"उ", "ʊ", "u"}, "ū": {"ऊ", "uː", "oo"}, "ṛ": {"ऋ", "r̩", "ri"}, "e": {"ए", "eː", "e"},
		"ai": {"ऐ", "ɛː", "ai"}, "o": {"ओ", "oː", "o"}, "au": {"औ", "ɔː", "au"},
	}
)

// ConvertCIsoToHindiAndIpa fills in the Hindi, IPA and English renderings of
// the consonants and the vowel from their romanization. Renderings already
// present are left alone.
func (t *Trajectory) ConvertCIsoToHindiAndIpa() {
	fill := func(iso string, table map[string]transliteration, hindi, ipa, eng *string) {
		tr, ok := table[iso]
		if !ok {
			return
		}
		if *hindi == "" {
			*hindi = tr.hindi
		}
		if *ipa == "" {
			*ipa = tr.ipa
		}
		if *eng == "" {
			*eng = tr.engTrans
		}
	}
	v := &t.Vocalization
	fill(v.StartConsonant, consonantTable, &v.StartConsonantHindi, &v.StartConsonantIPA, &v.StartConsonantEngTrans)
	fill(v.EndConsonant, consonantTable, &v.EndConsonantHindi, &v.EndConsonantIPA, &v.EndConsonantEngTrans)
	fill(v.Vowel, vowelTable, &v.VowelHindi, &v.VowelIPA, &v.VowelEngTrans)
}

// Syllable is the English rendering of the sung syllable, e.g. "kaa".
func (v Vocalization) Syllable() string {
	c := v.StartConsonantEngTrans
	if len(c) > 0 && c[len(c)-1] == 'a' && v.VowelEngTrans != "" {
		c = c[:len(c)-1]
	}
	return c + v.VowelEngTrans
}
