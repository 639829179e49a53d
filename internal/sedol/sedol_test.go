package sedol

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:  "valid mixed format",
			input: "B15KXQ8",
		},
		{
			name:  "valid old all-digit format",
			input: "5954135",
		},
		{
			name:  "valid UK DMO gilt",
			input: "BD9MZZ7",
		},
		{
			name:    "vowel rejected",
			input:   "A15KXQ8",
			wantErr: &InvalidCharacterError{Character: 'A'},
		},
		{
			name:    "lowercase rejected",
			input:   "b15KXQ8",
			wantErr: &InvalidCharacterError{Character: 'b'},
		},
		{
			name:    "punctuation rejected",
			input:   "!D9MZZ7",
			wantErr: &InvalidCharacterError{Character: '!'},
		},
		{
			name:    "too short",
			input:   "B15KXQ",
			wantErr: ErrInvalidLength,
		},
		{
			name:    "too long",
			input:   "B15KXQ88",
			wantErr: ErrInvalidLength,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: ErrInvalidLength,
		},
		{
			name:    "digit-first mixed format",
			input:   "015KXQ8",
			wantErr: ErrInvalidOldFormat,
		},
		{
			name:    "wrong check digit",
			input:   "B15KXQ7",
			wantErr: &InvalidCheckDigitError{Got: '7', Calc: '8'},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.input)

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate(%q) error = %v, want nil", tt.input, err)
				}
				if got != tt.input {
					t.Fatalf("Validate(%q) = %q, must return input unchanged", tt.input, got)
				}
				return
			}

			if err == nil {
				t.Fatalf("Validate(%q) error = nil, want %v", tt.input, tt.wantErr)
			}

			switch want := tt.wantErr.(type) {
			case *InvalidCharacterError:
				var charErr *InvalidCharacterError
				if !errors.As(err, &charErr) {
					t.Fatalf("Validate(%q) error = %v, want InvalidCharacterError", tt.input, err)
				}
				if charErr.Character != want.Character {
					t.Fatalf("character = %c, want %c", charErr.Character, want.Character)
				}
			case *InvalidCheckDigitError:
				var digitErr *InvalidCheckDigitError
				if !errors.As(err, &digitErr) {
					t.Fatalf("Validate(%q) error = %v, want InvalidCheckDigitError", tt.input, err)
				}
				if digitErr.Got != want.Got || digitErr.Calc != want.Calc {
					t.Fatalf("check digit got=%c calc=%c, want got=%c calc=%c",
						digitErr.Got, digitErr.Calc, want.Got, want.Calc)
				}
			default:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Validate(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
			}
		})
	}
}

func TestValidateCharacterCheckRunsBeforeLength(t *testing.T) {
	// Строка одновременно короче семи символов и содержит гласную:
	// должна сработать именно проверка набора символов.
	_, err := Validate("AE1")

	var charErr *InvalidCharacterError
	if !errors.As(err, &charErr) {
		t.Fatalf("error = %v, want InvalidCharacterError", err)
	}
	if charErr.Character != 'A' {
		t.Fatalf("character = %c, want first invalid character 'A'", charErr.Character)
	}
}

func TestValidateDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if _, err := Validate("B15KXQ8"); err != nil {
			t.Fatalf("Validate must be deterministic, got error on run %d: %v", i, err)
		}
		if _, err := Validate("B15KXQ7"); err == nil {
			t.Fatalf("Validate must be deterministic, no error on run %d", i)
		}
	}
}

func TestCalcCheckDigit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  rune
	}{
		{
			name:  "gilt stem",
			input: "BD9MZZ",
			want:  '7',
		},
		{
			name:  "mixed stem",
			input: "B15KXQ",
			want:  '8',
		},
		{
			name:  "all-digit stem",
			input: "595413",
			want:  '5',
		},
		{
			name:  "extra characters beyond six are ignored",
			input: "BD9MZZ0000",
			want:  '7',
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalcCheckDigit(tt.input)
			if got != tt.want {
				t.Fatalf("CalcCheckDigit(%q) = %c, want %c", tt.input, got, tt.want)
			}
		})
	}
}

func TestCalcCheckDigitAlwaysDecimal(t *testing.T) {
	stems := []string{"000000", "999999", "ZZZZZZ", "B15KXQ", "0Z0Z0Z", "BCDFGH"}

	for _, stem := range stems {
		got := CalcCheckDigit(stem)
		if got < '0' || got > '9' {
			t.Fatalf("CalcCheckDigit(%q) = %c, want ASCII digit", stem, got)
		}
	}
}

func TestCalcCheckDigitPanicsOnBadCharacter(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("CalcCheckDigit must panic on out-of-alphabet character")
		}
	}()

	CalcCheckDigit("AE9MZZ")
}

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "dashes and noise",
			input: "BD-9MZ-Z7??!!  ",
			want:  "BD9MZZ7",
		},
		{
			name:  "already clean",
			input: "B15KXQ8",
			want:  "B15KXQ8",
		},
		{
			name:  "case preserved",
			input: "bd9mzz7",
			want:  "bd9mzz7",
		},
		{
			name:  "non-ascii removed",
			input: "BD9éMZZ7–",
			want:  "BD9MZZ7",
		},
		{
			name:  "only noise",
			input: " -?!\t",
			want:  "",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.input)
			if got != tt.want {
				t.Fatalf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}

			if again := Clean(got); again != got {
				t.Fatalf("Clean must be idempotent: Clean(%q) = %q", got, again)
			}
		})
	}
}

func TestCleanThenValidate(t *testing.T) {
	got, err := Validate(Clean("BD-9MZ-Z7??!!  "))
	if err != nil {
		t.Fatalf("Validate(Clean) error: %v", err)
	}
	if got != "BD9MZZ7" {
		t.Fatalf("Validate(Clean) = %q, want %q", got, "BD9MZZ7")
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "invalid character",
			input: "!D9MZZ",
			want:  "invalid character !",
		},
		{
			name:  "invalid length",
			input: "0D9MZZ",
			want:  "invalid length, expected 7",
		},
		{
			name:  "invalid old format",
			input: "0D9MZZ6",
			want:  "invalid format, expected all digits when first char is digit",
		},
		{
			name:  "invalid check digit",
			input: "BD9MZZ6",
			want:  "invalid check digit 6, expected 7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.input)
			if err == nil {
				t.Fatalf("Validate(%q) error = nil", tt.input)
			}
			if err.Error() != tt.want {
				t.Fatalf("error message = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}
